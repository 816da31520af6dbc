package coincap

import (
	"context"
	"fmt"
	"time"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
)

// PriceProviderAdapter adapts coincap.Client to the asset.PriceProvider interface
type PriceProviderAdapter struct {
	client *Client
}

// NewPriceProviderAdapter creates a new adapter
func NewPriceProviderAdapter(client *Client) *PriceProviderAdapter {
	return &PriceProviderAdapter{client: client}
}

// SearchAssets returns search candidates
func (a *PriceProviderAdapter) SearchAssets(ctx context.Context, query string, limit, offset int) ([]asset.ProviderAsset, error) {
	resp, err := a.client.SearchAssets(ctx, query, limit, offset)
	if err != nil {
		return nil, providerError(err)
	}

	results := make([]asset.ProviderAsset, len(resp.Data))
	for i, d := range resp.Data {
		results[i] = asset.ProviderAsset{
			Slug:     d.ID,
			Symbol:   d.Symbol,
			Name:     d.Name,
			PriceUSD: d.PriceUSD,
		}
	}
	return results, nil
}

// GetAsset fetches the current quote for slug
func (a *PriceProviderAdapter) GetAsset(ctx context.Context, slug string) (*asset.ProviderQuote, error) {
	resp, err := a.client.GetAsset(ctx, slug)
	if err != nil {
		return nil, providerError(err)
	}
	if resp.Data == nil {
		return nil, nil
	}

	return &asset.ProviderQuote{
		Slug:      resp.Data.ID,
		Symbol:    resp.Data.Symbol,
		PriceUSD:  resp.Data.PriceUSD,
		Timestamp: fromMillis(resp.Timestamp),
	}, nil
}

// GetAssetHistory fetches price history for slug
func (a *PriceProviderAdapter) GetAssetHistory(ctx context.Context, slug, interval string, start, end *time.Time) ([]asset.ProviderPricePoint, error) {
	resp, err := a.client.GetAssetHistory(ctx, slug, interval, start, end)
	if err != nil {
		return nil, providerError(err)
	}

	points := make([]asset.ProviderPricePoint, len(resp.Data))
	for i, p := range resp.Data {
		points[i] = asset.ProviderPricePoint{
			PriceUSD: p.PriceUSD,
			Time:     fromMillis(p.Time),
		}
	}
	return points, nil
}

// GetPricesBySymbols fetches prices for symbols, preserving request order
func (a *PriceProviderAdapter) GetPricesBySymbols(ctx context.Context, symbols []string) (*asset.ProviderBatchQuote, error) {
	resp, err := a.client.GetPricesBySymbols(ctx, symbols)
	if err != nil {
		return nil, providerError(err)
	}

	return &asset.ProviderBatchQuote{
		Prices:    resp.Data,
		Timestamp: fromMillis(resp.Timestamp),
	}, nil
}

// providerError tags throttling so callers outside this package can tell it apart.
func providerError(err error) error {
	if IsRateLimitError(err) {
		return fmt.Errorf("%w: %w", asset.ErrProviderRateLimited, err)
	}
	return err
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Ensure PriceProviderAdapter implements asset.PriceProvider
var _ asset.PriceProvider = (*PriceProviderAdapter)(nil)
