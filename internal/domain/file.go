package domain

import (
	"context"
	"net/url"
	"path"
)

// File is an uploaded binary payload.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Size returns the payload length in bytes
func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Content))
}

// FileStorage defines the interface for blob storage operations
type FileStorage interface {
	// Upload saves a file and returns its public URL
	Upload(ctx context.Context, file *File) (string, error)

	// Delete removes a blob by name
	Delete(ctx context.Context, blobName string) error
}

// BlobNameFromURL extracts the blob name (last path segment) from a stored photo URL.
func BlobNameFromURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	return name, true
}
