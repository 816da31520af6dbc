package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// Service provides business logic for a user's holdings
type Service struct {
	repo       Repository
	assets     AssetRegistry
	calculator *BalanceCalculator
	logger     *logger.Logger
}

// NewService creates a new wallet service
func NewService(repo Repository, assets AssetRegistry, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		assets:     assets,
		calculator: NewBalanceCalculator(assets),
		logger:     log.WithComponent("wallet_service"),
	}
}

// AddAsset records a new holding. The asset row is created on first use of
// the symbol. A symbol the user already holds fails with
// ASSET_ALREADY_EXISTS before anything is written.
func (s *Service) AddAsset(ctx context.Context, userID uuid.UUID, in AddAssetInput) (*Holding, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	_, err := s.repo.GetHolding(ctx, userID, in.Symbol)
	switch {
	case err == nil:
		return nil, apperrors.AssetAlreadyExists(in.Symbol, ErrHoldingExists)
	case !errors.Is(err, ErrHoldingNotFound):
		return nil, fmt.Errorf("failed to check holding: %w", err)
	}

	a, err := s.assets.FindOrCreate(ctx, in.Symbol)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	h := &Holding{
		UserID:        userID,
		AssetID:       a.ID,
		Quantity:      in.Quantity,
		PurchasePrice: in.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	if err := s.repo.Create(ctx, h); err != nil {
		if errors.Is(err, ErrHoldingExists) {
			return nil, apperrors.AssetAlreadyExists(in.Symbol, err)
		}
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	s.logger.WithContext(ctx).Info("holding added", "asset", h.AssetID)
	return h, nil
}

// UpdateAsset overwrites quantity and purchase price of an existing holding.
func (s *Service) UpdateAsset(ctx context.Context, userID uuid.UUID, in UpdateAssetInput) (*Holding, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	h, err := s.repo.GetHolding(ctx, userID, in.Symbol)
	if err != nil {
		if errors.Is(err, ErrHoldingNotFound) {
			return nil, apperrors.AssetNotFound(in.Symbol, err)
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	h.Quantity = in.Amount
	h.PurchasePrice = in.Price
	h.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, h); err != nil {
		if errors.Is(err, ErrHoldingNotFound) {
			return nil, apperrors.AssetNotFound(in.Symbol, err)
		}
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}

	s.logger.WithContext(ctx).Info("holding updated", "asset", h.AssetID)
	return h, nil
}

// Info returns the user's wallet valued at purchase and at current prices.
func (s *Service) Info(ctx context.Context, userID uuid.UUID) (*Info, error) {
	holdings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	current, err := s.calculator.CurrentBalance(ctx, holdings)
	if err != nil {
		return nil, err
	}

	return &Info{
		ID:       userID,
		Original: s.calculator.OriginalBalance(holdings),
		Current:  current,
	}, nil
}
