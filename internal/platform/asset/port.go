package asset

import (
	"context"
	"iter"
	"time"
)

// Repository defines the interface for asset persistence operations
type Repository interface {
	// GetByID retrieves an asset by its upper-cased symbol
	GetByID(ctx context.Context, id string) (*Asset, error)

	// GetByIDs loads many assets in one round trip. Missing IDs are absent
	// from the result, not an error.
	GetByIDs(ctx context.Context, ids []string) ([]*Asset, error)

	// Create inserts a new asset. Returns ErrDuplicateAsset if the ID exists.
	Create(ctx context.Context, asset *Asset) error

	// Save overwrites price and updated_at of an existing asset
	Save(ctx context.Context, asset *Asset) error

	// StreamAll yields every asset lazily. Iteration stops at the first error.
	StreamAll(ctx context.Context) iter.Seq2[*Asset, error]
}

// PriceProvider is the remote price API
type PriceProvider interface {
	// SearchAssets returns candidates matching query, a page at a time
	SearchAssets(ctx context.Context, query string, limit, offset int) ([]ProviderAsset, error)

	// GetAsset fetches the current quote for a provider slug
	GetAsset(ctx context.Context, slug string) (*ProviderQuote, error)

	// GetAssetHistory fetches prices at the given interval. start and end are
	// either both set or both nil.
	GetAssetHistory(ctx context.Context, slug, interval string, start, end *time.Time) ([]ProviderPricePoint, error)

	// GetPricesBySymbols returns one price per symbol in request order
	GetPricesBySymbols(ctx context.Context, symbols []string) (*ProviderBatchQuote, error)
}

// SlugStore is an optional shared tier behind the in-process resolver cache.
type SlugStore interface {
	GetSlug(ctx context.Context, symbol string) (string, bool, error)
	SetSlug(ctx context.Context, symbol, slug string) error
}

// CurrentPriceFetcher is the slice of PriceService used by asset creation
// and the refresher.
type CurrentPriceFetcher interface {
	GetCurrentPriceBySymbol(ctx context.Context, symbol string) (AssetPrice, error)
}
