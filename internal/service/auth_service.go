package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// ProfileCreator creates the empty profile that accompanies every new account
type ProfileCreator interface {
	CreateProfile(ctx context.Context, userID, username, email string) error
	// EnsureProfile creates the profile only when it is missing
	EnsureProfile(ctx context.Context, userID, username, email string) error
}

// AuthService handles registration and credential login
type AuthService struct {
	userRepo     domain.UserRepository
	profiles     ProfileCreator
	tokenService *TokenService
	clock        domain.Clock
	logger       *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	profiles ProfileCreator,
	tokenService *TokenService,
	clock domain.Clock,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		profiles:     profiles,
		tokenService: tokenService,
		clock:        clock,
		logger:       logger.Named("auth"),
	}
}

var errInvalidCredentials = domain.Unauthorized("Invalid email or password.")

// Register creates an account and its profile
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.ensureAvailable(ctx, email, req.Username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.BadRequest("User with this email or username already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.profiles.CreateProfile(ctx, user.UserID, user.Username, user.Email); err != nil {
		s.logger.Error("profile creation failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID))

	return &dto.UserResponse{
		UserID:   user.UserID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

// ensureAvailable looks up email and username concurrently
func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	var emailTaken, usernameTaken bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		taken, err := s.exists(gctx, s.userRepo.GetByEmail, email)
		emailTaken = taken
		return err
	})
	g.Go(func() error {
		taken, err := s.exists(gctx, s.userRepo.GetByUsername, username)
		usernameTaken = taken
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to check user uniqueness: %w", err)
	}

	switch {
	case emailTaken:
		return domain.BadRequest("User with this email already exists.")
	case usernameTaken:
		return domain.BadRequest("User with this username already exists.")
	}
	return nil
}

func (s *AuthService) exists(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), key string) (bool, error) {
	_, err := lookup(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Login checks credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, userAgent, ipAddress string) (*dto.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	// Registration is not transactional, a failed profile insert is repaired here
	if err := s.profiles.EnsureProfile(ctx, user.UserID, user.Username, user.Email); err != nil {
		s.logger.Warn("profile repair failed", zap.String("user_id", user.UserID), zap.Error(err))
	}

	return s.tokenService.GenerateTokenPair(ctx, user, userAgent, ipAddress)
}

// Refresh rotates a refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*dto.TokenPair, error) {
	return s.tokenService.RefreshAccessToken(ctx, refreshToken, userAgent, ipAddress)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenService.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
