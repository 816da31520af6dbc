package simulation

import "errors"

var (
	ErrTimestampRequired = errors.New("timestamp is required")
	ErrFutureTimestamp   = errors.New("timestamp must not be in the future")
	ErrAssetCount        = errors.New("you need at least one asset, max 10 assets are allowed")
	ErrNegativeQuantity  = errors.New("quantity must be greater than or equal to zero")
	ErrNegativeValue     = errors.New("value must be greater than or equal to zero")
	ErrDuplicateSymbol   = errors.New("each symbol may appear only once")
	ErrMissingBaseline   = errors.New("baseline value not found for simulated asset")
)
