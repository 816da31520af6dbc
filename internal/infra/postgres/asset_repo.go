package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
)

const assetColumns = `id, usd_price::text, created_at, updated_at`

// AssetRepository handles asset persistence operations
type AssetRepository struct {
	pool *pgxpool.Pool
}

var _ asset.Repository = (*AssetRepository)(nil)

// NewAssetRepository creates a new PostgreSQL asset repository
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

// GetByID retrieves an asset by its upper-cased symbol
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*asset.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	a, err := scanAsset(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, asset.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return a, nil
}

// GetByIDs loads all listed assets in one query
func (r *AssetRepository) GetByIDs(ctx context.Context, ids []string) ([]*asset.Asset, error) {
	if len(ids) == 0 {
		return []*asset.Asset{}, nil
	}

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ANY($1) ORDER BY id`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*asset.Asset, 0, len(ids))
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

// Create inserts a new asset
func (r *AssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}

	query := `
		INSERT INTO assets (id, usd_price, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, a.ID, a.USDPrice.String(), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return asset.ErrDuplicateAsset
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// Save overwrites the price and updated_at of an existing asset
func (r *AssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}

	query := `UPDATE assets SET usd_price = $2::numeric, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, a.ID, a.USDPrice.String(), a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return asset.ErrAssetNotFound
	}

	return nil
}

// StreamAll yields every asset row without materializing the table.
// The underlying connection is released when iteration ends.
func (r *AssetRepository) StreamAll(ctx context.Context) iter.Seq2[*asset.Asset, error] {
	return func(yield func(*asset.Asset, error) bool) {
		rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY id`)
		if err != nil {
			yield(nil, fmt.Errorf("failed to query assets: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAsset(rows)
			if err != nil {
				yield(nil, fmt.Errorf("failed to scan asset: %w", err))
				return
			}
			if !yield(a, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to iterate assets: %w", err))
		}
	}
}

func scanAsset(row pgx.Row) (*asset.Asset, error) {
	var (
		a     asset.Asset
		price string
	)

	if err := row.Scan(&a.ID, &price, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	usd, err := parseNumeric("usd_price", price)
	if err != nil {
		return nil, err
	}
	a.USDPrice = usd
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return &a, nil
}
