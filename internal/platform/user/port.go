package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists accounts keyed by normalized email.
type Repository interface {
	// Create inserts u. A duplicate email yields ErrUserAlreadyExists.
	Create(ctx context.Context, u *User) error

	// GetByEmail returns ErrUserNotFound when no account has email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	EmailTaken(ctx context.Context, email string) (bool, error)

	// RecordLogin stamps last_login_at and updated_at with at.
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
