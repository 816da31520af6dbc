package wallet

import "errors"

var (
	// Validation errors
	ErrInvalidUserID    = errors.New("invalid user ID")
	ErrNegativeQuantity = errors.New("quantity must be greater than or equal to zero")
	ErrNegativePrice    = errors.New("price must be greater than or equal to zero")

	// Repository errors
	ErrHoldingNotFound = errors.New("holding not found")
	ErrHoldingExists   = errors.New("holding already exists for this user and asset")
)
