package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
)

// Repository defines the interface for holding persistence operations
type Repository interface {
	// GetHolding returns ErrHoldingNotFound when the user does not hold assetID
	GetHolding(ctx context.Context, userID uuid.UUID, assetID string) (*Holding, error)

	// ListByUser returns the user's holdings ordered by asset ID
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// Create inserts a holding. Returns ErrHoldingExists on a duplicate key.
	Create(ctx context.Context, h *Holding) error

	// Update overwrites quantity, purchase price and updated_at
	Update(ctx context.Context, h *Holding) error
}

// AssetLoader bulk-loads persisted assets keyed by ID.
type AssetLoader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*asset.Asset, error)
}

// AssetRegistry is the asset service as used by the wallet.
type AssetRegistry interface {
	AssetLoader
	FindOrCreate(ctx context.Context, symbol string) (*asset.Asset, error)
}
