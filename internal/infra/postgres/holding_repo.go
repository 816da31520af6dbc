package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/coinwallet/internal/platform/wallet"
)

const holdingColumns = `user_id, asset_id, quantity::text, purchase_price::text, created_at, updated_at`

// HoldingRepository persists user holdings in user_assets
type HoldingRepository struct {
	pool *pgxpool.Pool
}

var _ wallet.Repository = (*HoldingRepository)(nil)

// NewHoldingRepository creates a new PostgreSQL holding repository
func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

// GetHolding retrieves one user's holding of one asset
func (r *HoldingRepository) GetHolding(ctx context.Context, userID uuid.UUID, assetID string) (*wallet.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM user_assets WHERE user_id = $1 AND asset_id = $2`

	h, err := scanHolding(r.pool.QueryRow(ctx, query, userID, assetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrHoldingNotFound
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	return h, nil
}

// ListByUser returns all holdings of a user ordered by asset
func (r *HoldingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*wallet.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM user_assets WHERE user_id = $1 ORDER BY asset_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []*wallet.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// Create inserts a new holding
func (r *HoldingRepository) Create(ctx context.Context, h *wallet.Holding) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("invalid holding: %w", err)
	}

	query := `
		INSERT INTO user_assets (user_id, asset_id, quantity, purchase_price, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		h.UserID,
		h.AssetID,
		h.Quantity.String(),
		h.PurchasePrice.String(),
		h.CreatedAt,
		h.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return wallet.ErrHoldingExists
		}
		return fmt.Errorf("failed to create holding: %w", err)
	}

	return nil
}

// Update overwrites quantity, purchase price and updated_at
func (r *HoldingRepository) Update(ctx context.Context, h *wallet.Holding) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("invalid holding: %w", err)
	}

	query := `
		UPDATE user_assets
		SET quantity = $3::numeric, purchase_price = $4::numeric, updated_at = $5
		WHERE user_id = $1 AND asset_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		h.UserID,
		h.AssetID,
		h.Quantity.String(),
		h.PurchasePrice.String(),
		h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrHoldingNotFound
	}

	return nil
}

func scanHolding(row pgx.Row) (*wallet.Holding, error) {
	var (
		h             wallet.Holding
		quantity      string
		purchasePrice string
	)

	err := row.Scan(&h.UserID, &h.AssetID, &quantity, &purchasePrice, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if h.Quantity, err = parseNumeric("quantity", quantity); err != nil {
		return nil, err
	}
	if h.PurchasePrice, err = parseNumeric("purchase_price", purchasePrice); err != nil {
		return nil, err
	}
	h.CreatedAt = h.CreatedAt.UTC()
	h.UpdatedAt = h.UpdatedAt.UTC()

	return &h, nil
}
