package asset

import "errors"

// Asset errors
var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrDuplicateAsset = errors.New("asset already exists")
	ErrInvalidSymbol  = errors.New("symbol must be between 1 and 10 characters")
	ErrInvalidSlug    = errors.New("slug is required")
)

// Price errors
var (
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrInvalidPrice       = errors.New("invalid price data")
	ErrNoSymbols          = errors.New("at least one symbol is required")
	ErrTooManySymbols     = errors.New("at most 100 symbols per request")
	ErrInvalidTimeRange   = errors.New("invalid time range")
	ErrEmptyResponse      = errors.New("empty response from price provider")
	ErrPriceCountMismatch = errors.New("price count does not match requested symbols")
	ErrSlugNotFound       = errors.New("no exact symbol match from price provider")

	// ErrProviderRateLimited marks a provider failure caused by throttling.
	ErrProviderRateLimited = errors.New("price provider rate limit exceeded")
)
