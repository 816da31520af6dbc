package asset

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// Service owns the asset registry: one row per symbol, created on first use.
type Service struct {
	repo   Repository
	prices CurrentPriceFetcher
	logger *logger.Logger
}

// NewService creates a new asset service
func NewService(repo Repository, prices CurrentPriceFetcher, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		logger: log.WithComponent("asset_service"),
	}
}

// FindOrCreate returns the asset for symbol, creating it at the current
// provider price when it does not exist yet. The new row's timestamps are
// the provider's price timestamp.
func (s *Service) FindOrCreate(ctx context.Context, symbol string) (*Asset, error) {
	id := NormalizeSymbol(symbol)
	if err := ValidateSymbol(id); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, err.Error())
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return nil, fmt.Errorf("failed to get asset %s: %w", id, err)
	}

	price, err := s.prices.GetCurrentPriceBySymbol(ctx, id)
	if err != nil {
		return nil, err
	}

	a := &Asset{
		ID:        id,
		USDPrice:  price.Price,
		CreatedAt: price.Timestamp,
		UpdatedAt: price.Timestamp,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateAsset) {
			// created concurrently by another request
			return s.repo.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("failed to create asset %s: %w", id, err)
	}

	s.logger.WithContext(ctx).Info("asset created", "asset", id, "usd_price", a.USDPrice.String())
	return a, nil
}

// FindByIDs bulk-loads assets keyed by ID. Unknown IDs are omitted.
func (s *Service) FindByIDs(ctx context.Context, ids []string) (map[string]*Asset, error) {
	result := make(map[string]*Asset, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	assets, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	for _, a := range assets {
		result[a.ID] = a
	}
	return result, nil
}
