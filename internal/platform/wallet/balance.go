package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
)

// BalanceCalculator values holdings at purchase price or at the latest
// stored asset price. Output lines follow the input order one to one.
type BalanceCalculator struct {
	assets AssetLoader
}

// NewBalanceCalculator creates a balance calculator
func NewBalanceCalculator(assets AssetLoader) *BalanceCalculator {
	return &BalanceCalculator{assets: assets}
}

// OriginalBalance sums quantity x purchase price.
func (c *BalanceCalculator) OriginalBalance(holdings []*Holding) Balance {
	b := Balance{Total: decimal.Zero, Assets: make([]asset.Valuation, 0, len(holdings))}
	for _, h := range holdings {
		value := h.Quantity.Mul(h.PurchasePrice)
		b.Assets = append(b.Assets, asset.Valuation{
			Symbol:   h.AssetID,
			Quantity: h.Quantity,
			Price:    h.PurchasePrice,
			Value:    value,
		})
		b.Total = b.Total.Add(value)
	}
	return b
}

// CurrentBalance values every holding at its asset's stored USD price,
// loading all assets in one call. A holding without an asset row fails
// with ASSET_NOT_FOUND naming the symbol.
func (c *BalanceCalculator) CurrentBalance(ctx context.Context, holdings []*Holding) (Balance, error) {
	b := Balance{Total: decimal.Zero, Assets: make([]asset.Valuation, 0, len(holdings))}
	if len(holdings) == 0 {
		return b, nil
	}

	ids := make([]string, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.AssetID]; !ok {
			seen[h.AssetID] = struct{}{}
			ids = append(ids, h.AssetID)
		}
	}

	assets, err := c.assets.FindByIDs(ctx, ids)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to load assets: %w", err)
	}

	for _, h := range holdings {
		a, ok := assets[h.AssetID]
		if !ok {
			return Balance{}, apperrors.AssetNotFound(h.AssetID, asset.ErrAssetNotFound)
		}
		value := h.Quantity.Mul(a.USDPrice)
		updatedAt := a.UpdatedAt
		b.Assets = append(b.Assets, asset.Valuation{
			Symbol:    h.AssetID,
			Quantity:  h.Quantity,
			Price:     a.USDPrice,
			Value:     value,
			Timestamp: &updatedAt,
		})
		b.Total = b.Total.Add(value)
	}

	return b, nil
}
