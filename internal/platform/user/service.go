package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// Service handles user business logic
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new user service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log.WithComponent("user_service"),
	}
}

// Register registers a new user
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.ValidateEmail(); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check if email is taken: %w", err)
	}
	if taken {
		return nil, ErrUserAlreadyExists
	}

	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithContext(ctx).Info("user registered", "user_id", user.ID.String())
	return user, nil
}

// Login authenticates a user with email and password.
// Unknown email and wrong password both return ErrBadCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := user.CheckPassword(password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	user.MarkLoggedIn(time.Now().UTC())
	if err := s.repo.RecordLogin(ctx, user.ID, *user.LastLoginAt); err != nil {
		s.logger.WithContext(ctx).Warn("failed to update last login",
			"user_id", user.ID.String(),
			"error", err,
		)
	}

	return user, nil
}
