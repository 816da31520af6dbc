package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
)

// Holding is one user's position in one asset. (UserID, AssetID) is unique.
type Holding struct {
	UserID        uuid.UUID
	AssetID       string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the holding
func (h *Holding) Validate() error {
	if h.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if err := asset.ValidateSymbol(h.AssetID); err != nil {
		return err
	}
	if h.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}
	if h.PurchasePrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Balance is the valuation of a list of holdings, one line per holding.
type Balance struct {
	Total  decimal.Decimal
	Assets []asset.Valuation
}

// Info is a user's wallet at purchase prices and at current prices.
type Info struct {
	ID       uuid.UUID
	Original Balance
	Current  Balance
}

// AddAssetInput is the payload for adding a new holding.
type AddAssetInput struct {
	Symbol   string
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// UpdateAssetInput overwrites an existing holding.
type UpdateAssetInput struct {
	Symbol string
	Price  decimal.Decimal
	Amount decimal.Decimal
}
