package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/lostandfound/backend/internal/validation"
)

const refreshCookieName = "lostandfound-refresh-token"

// AuthService is the account workflow behind the auth endpoints
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, userAgent, ipAddress string) (*dto.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*dto.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService   AuthService
	validator     *validation.Validator
	refreshExpiry time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, validator *validation.Validator, refreshExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validator:     validator,
		refreshExpiry: refreshExpiry,
	}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	pair, err := h.authService.Login(c.UserContext(), &req, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(pair)
}

// Refresh handles POST /v1/auth/refresh.
// The refresh token comes from the body or, failing that, the httpOnly cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := h.refreshToken(c)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No refresh token provided",
		})
	}

	pair, err := h.authService.Refresh(c.UserContext(), refreshToken, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		h.clearRefreshCookie(c)
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(pair)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := h.refreshToken(c); refreshToken != "" {
		if err := h.authService.Logout(c.UserContext(), refreshToken); err != nil {
			return respondError(c, err)
		}
	}

	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) refreshToken(c *fiber.Ctx) string {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}
	return c.Cookies(refreshCookieName)
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.refreshExpiry),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/v1/auth",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/v1/auth",
	})
}
