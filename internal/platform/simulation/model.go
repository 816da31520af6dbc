package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
)

// MaxAssets bounds the number of positions in one request.
const MaxAssets = 10

// Request is a hypothetical portfolio to value at Timestamp.
type Request struct {
	Timestamp time.Time
	Assets    []RequestAsset
}

// RequestAsset is one position. Value is the user-asserted original
// investment the position's performance is measured against.
type RequestAsset struct {
	Symbol   string
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// Validate checks the request against now and upper-cases symbols in place.
func (r *Request) Validate(now time.Time) error {
	if r.Timestamp.IsZero() {
		return ErrTimestampRequired
	}
	if r.Timestamp.After(now) {
		return ErrFutureTimestamp
	}
	if len(r.Assets) == 0 || len(r.Assets) > MaxAssets {
		return ErrAssetCount
	}

	seen := make(map[string]struct{}, len(r.Assets))
	for i := range r.Assets {
		a := &r.Assets[i]
		a.Symbol = asset.NormalizeSymbol(a.Symbol)
		if err := asset.ValidateSymbol(a.Symbol); err != nil {
			return err
		}
		if a.Quantity.IsNegative() {
			return ErrNegativeQuantity
		}
		if a.Value.IsNegative() {
			return ErrNegativeValue
		}
		if _, dup := seen[a.Symbol]; dup {
			return ErrDuplicateSymbol
		}
		seen[a.Symbol] = struct{}{}
	}
	return nil
}

// Result is the valuation of the surviving positions at Timestamp.
type Result struct {
	Timestamp        time.Time
	Total            decimal.Decimal
	BestAsset        string
	BestPerformance  decimal.Decimal
	WorstAsset       string
	WorstPerformance decimal.Decimal
	Assets           []asset.Valuation
}
