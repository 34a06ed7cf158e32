package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

type Config struct {
	Secret         string
	AccessTokenTTL time.Duration
	// AdminSignupEnabled lets signup requests grant themselves the admin claim.
	AdminSignupEnabled bool
}

type Service struct {
	cfg         Config
	userService *user.Service
	logger      *slog.Logger
}

func NewService(cfg Config, userService *user.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 24 * time.Hour
	}
	return &Service{cfg: cfg, userService: userService, logger: logger}
}

// Signup hashes the password and creates the account.
func (s *Service) Signup(ctx context.Context, email, username, password string, isAdmin bool) (user.User, error) {
	hashedPassword, err := crypto.HashPassword(password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}
	if isAdmin && !s.cfg.AdminSignupEnabled {
		s.logger.WarnContext(ctx, "admin signup disabled, creating member account", "email", email)
		isAdmin = false
	}
	return s.userService.Register(ctx, email, username, hashedPassword, isAdmin)
}

// Login verifies the credentials and returns a signed access token and its
// lifetime in seconds.
func (s *Service) Login(ctx context.Context, email, password string) (string, int, error) {
	u, err := s.userService.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", 0, ErrUnauthorized
		}
		return "", 0, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return "", 0, ErrUnauthorized
	}

	accessToken, jti, err := crypto.GenerateToken(s.cfg.Secret, u.ID, u.IsAdmin, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID, "jti", jti)
	return accessToken, int(s.cfg.AccessTokenTTL.Seconds()), nil
}
