package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/domain"
)

// readFormFile loads an uploaded image from a multipart field.
// A missing field yields nil, nil.
func readFormFile(c *fiber.Ctx, field string, maxUploadMB int64) (*domain.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}

	maxBytes := maxUploadMB * 1024 * 1024
	if fileHeader.Size > maxBytes {
		return nil, domain.BadRequest(fmt.Sprintf("File size exceeds maximum of %dMB.", maxUploadMB))
	}

	if !isValidImageType(fileHeader) {
		return nil, domain.BadRequest("Invalid file type, only JPEG, PNG, WEBP and HEIC images are allowed.")
	}

	fileHandle, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer fileHandle.Close()

	content, err := io.ReadAll(fileHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &domain.File{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// isMultipart reports whether the request body is multipart/form-data
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// isValidImageType checks if the uploaded file is a valid image type
func isValidImageType(file *multipart.FileHeader) bool {
	switch file.Header.Get(fiber.HeaderContentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic", "image/heif":
		return true
	}

	// Fallback: check by file extension
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif":
		return true
	}
	return false
}
