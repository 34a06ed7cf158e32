package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Register creates an account. The password must already be hashed.
func (s *Service) Register(ctx context.Context, email, username, passwordHash string, isAdmin bool) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	newUser := &User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}
	if err := s.repo.CreateUser(ctx, newUser); err != nil {
		return User{}, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", newUser.ID, "is_admin", newUser.IsAdmin)
	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Exists reports whether the account is still present.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes targetID on behalf of the requester. Only the account owner
// or an administrator may do so. Books held by the account are returned as
// part of the deletion.
func (s *Service) Delete(ctx context.Context, targetID, requesterID string, requesterIsAdmin bool) error {
	if requesterID == "" || (targetID != requesterID && !requesterIsAdmin) {
		return ErrUnauthorized
	}

	if err := s.repo.DeleteUser(ctx, targetID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user deleted",
		"user_id", targetID,
		"requester_id", requesterID,
		"by_admin", targetID != requesterID,
	)
	return nil
}
