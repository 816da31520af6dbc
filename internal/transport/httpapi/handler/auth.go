package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/kislikjeka/coinwallet/internal/platform/user"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// UserService defines the user operations needed by AuthHandler
type UserService interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, email string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users  UserService
	tokens TokenIssuer
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserService, tokens TokenIssuer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: log.WithComponent("auth_handler"),
	}
}

// CredentialsRequest is the register and login request body
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is a registered user without sensitive data
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse carries a signed access token
type TokenResponse struct {
	Token string `json:"token"`
}

func (req CredentialsRequest) validate() error {
	if req.Email == "" {
		return apperrors.Validation("email is required")
	}
	if req.Password == "" {
		return apperrors.Validation("password is required")
	}
	return nil
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, mapUserError(err))
		return
	}

	respondJSON(w, UserResponse{ID: u.ID.String(), Email: u.Email}, http.StatusCreated)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, mapUserError(err))
		return
	}

	token, err := h.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, user.ErrUserAlreadyExists):
		return apperrors.UserAlreadyExists(err)
	case errors.Is(err, user.ErrBadCredentials):
		return apperrors.BadCredentials()
	case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrPasswordTooShort):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	default:
		return err
	}
}
