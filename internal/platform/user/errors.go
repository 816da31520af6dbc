package user

import "errors"

var (
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch    = errors.New("password does not match")
	ErrMissingPasswordHash = errors.New("password hash is not set")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")

	// ErrBadCredentials is the only failure Login reports for an unknown
	// email or a wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
)
