package asset

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxSymbolLength bounds Asset.ID.
const MaxSymbolLength = 10

// Asset is the persisted record of one symbol ever held by any user.
// ID is the upper-cased symbol.
type Asset struct {
	ID        string
	USDPrice  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the asset fields
func (a *Asset) Validate() error {
	if err := ValidateSymbol(a.ID); err != nil {
		return err
	}
	if a.ID != NormalizeSymbol(a.ID) {
		return ErrInvalidSymbol
	}
	if a.USDPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// AssetPrice is a provider-reported price at a point in time.
type AssetPrice struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// Valuation is one line of a balance or simulation: quantity priced at Price.
// Timestamp is set when the price has a known as-of time.
type Valuation struct {
	Symbol    string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Value     decimal.Decimal
	Timestamp *time.Time
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol checks the length bounds of a normalized symbol.
func ValidateSymbol(symbol string) error {
	s := NormalizeSymbol(symbol)
	if s == "" || len(s) > MaxSymbolLength {
		return ErrInvalidSymbol
	}
	return nil
}

// Provider-side shapes. Prices stay as the provider's decimal strings until
// the PriceService parses them.

// ProviderAsset is a search candidate.
type ProviderAsset struct {
	Slug     string
	Symbol   string
	Name     string
	PriceUSD string
}

// ProviderQuote is a single-asset current price.
type ProviderQuote struct {
	Slug      string
	Symbol    string
	PriceUSD  string
	Timestamp time.Time
}

// ProviderPricePoint is one entry of a price history.
type ProviderPricePoint struct {
	PriceUSD string
	Time     time.Time
}

// ProviderBatchQuote holds prices in the order the symbols were requested.
type ProviderBatchQuote struct {
	Prices    []string
	Timestamp time.Time
}
