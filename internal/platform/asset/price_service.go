package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

const (
	// MaxBatchSymbols is the provider's limit for one batch-by-symbol call.
	MaxBatchSymbols = 100

	// HistoryInterval is the granularity requested for price history.
	HistoryInterval = "d1"
)

// PriceService answers price queries on top of a PriceProvider.
// Every provider failure comes back as a PRICE_FETCH_ERROR AppError.
type PriceService struct {
	provider PriceProvider
	resolver *SymbolResolver
	logger   *logger.Logger
}

// NewPriceService creates a price service. resolver is used for
// symbol-based history lookups.
func NewPriceService(provider PriceProvider, resolver *SymbolResolver, log *logger.Logger) *PriceService {
	return &PriceService{
		provider: provider,
		resolver: resolver,
		logger:   log.WithComponent("price_service"),
	}
}

// GetCurrentPriceBySymbol returns the latest price for one symbol. It goes
// through the batch endpoint like the multi-symbol variant.
func (s *PriceService) GetCurrentPriceBySymbol(ctx context.Context, symbol string) (AssetPrice, error) {
	if strings.TrimSpace(symbol) == "" {
		return AssetPrice{}, apperrors.Wrap(ErrInvalidSymbol, apperrors.ErrCodeInvalidInput, "symbol is required")
	}

	prices, err := s.GetCurrentPricesBySymbols(ctx, []string{symbol})
	if err != nil {
		return AssetPrice{}, err
	}

	price, ok := prices[symbol]
	if !ok {
		return AssetPrice{}, apperrors.PriceFetch(fmt.Sprintf("no price returned for %s", symbol), ErrPriceCountMismatch)
	}
	return price, nil
}

// GetCurrentPricesBySymbols fetches 1..100 symbols in one provider call.
// The i-th price of the provider response belongs to symbols[i].
func (s *PriceService) GetCurrentPricesBySymbols(ctx context.Context, symbols []string) (map[string]AssetPrice, error) {
	if len(symbols) == 0 {
		return nil, apperrors.Wrap(ErrNoSymbols, apperrors.ErrCodeInvalidInput, ErrNoSymbols.Error())
	}
	if len(symbols) > MaxBatchSymbols {
		return nil, apperrors.Wrap(ErrTooManySymbols, apperrors.ErrCodeInvalidInput, ErrTooManySymbols.Error())
	}
	for _, symbol := range symbols {
		if strings.TrimSpace(symbol) == "" {
			return nil, apperrors.Wrap(ErrInvalidSymbol, apperrors.ErrCodeInvalidInput, "symbol is required")
		}
	}

	quote, err := s.provider.GetPricesBySymbols(ctx, symbols)
	if err != nil {
		s.logger.WithContext(ctx).Warn("batch price fetch failed", "symbols", len(symbols), "error", err)
		return nil, providerFailure("failed to fetch prices", err)
	}
	if quote == nil || len(quote.Prices) == 0 {
		return nil, apperrors.PriceFetch("failed to fetch prices", ErrEmptyResponse)
	}
	if len(quote.Prices) != len(symbols) {
		return nil, apperrors.PriceFetch(
			fmt.Sprintf("requested %d prices, received %d", len(symbols), len(quote.Prices)),
			ErrPriceCountMismatch,
		)
	}

	result := make(map[string]AssetPrice, len(symbols))
	for i, symbol := range symbols {
		price, err := parsePrice(quote.Prices[i])
		if err != nil {
			return nil, apperrors.PriceFetch(fmt.Sprintf("invalid price for %s", symbol), err)
		}
		result[symbol] = AssetPrice{Timestamp: quote.Timestamp, Price: price}
	}

	return result, nil
}

// GetCurrentPriceBySlug fetches the current price by provider identifier.
func (s *PriceService) GetCurrentPriceBySlug(ctx context.Context, slug string) (AssetPrice, error) {
	if strings.TrimSpace(slug) == "" {
		return AssetPrice{}, apperrors.Wrap(ErrInvalidSlug, apperrors.ErrCodeInvalidInput, ErrInvalidSlug.Error())
	}

	quote, err := s.provider.GetAsset(ctx, slug)
	if err != nil {
		return AssetPrice{}, providerFailure(fmt.Sprintf("failed to fetch price for %s", slug), err)
	}
	if quote == nil {
		return AssetPrice{}, apperrors.PriceFetch(fmt.Sprintf("failed to fetch price for %s", slug), ErrEmptyResponse)
	}

	price, err := parsePrice(quote.PriceUSD)
	if err != nil {
		return AssetPrice{}, apperrors.PriceFetch(fmt.Sprintf("invalid price for %s", slug), err)
	}

	return AssetPrice{Timestamp: quote.Timestamp, Price: price}, nil
}

// GetHistoricalPrices resolves symbol to a slug and returns its daily
// history between start and end. Both bounds nil asks for the provider's
// most recent window.
func (s *PriceService) GetHistoricalPrices(ctx context.Context, symbol string, start, end *time.Time) ([]AssetPrice, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, apperrors.Wrap(ErrInvalidSymbol, apperrors.ErrCodeInvalidInput, "symbol is required")
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	slug, err := s.resolver.Resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return s.GetHistoricalPricesBySlug(ctx, slug, start, end)
}

// GetHistoricalPricesBySlug returns daily history for a provider slug. No
// data in range yields an empty slice.
func (s *PriceService) GetHistoricalPricesBySlug(ctx context.Context, slug string, start, end *time.Time) ([]AssetPrice, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, apperrors.Wrap(ErrInvalidSlug, apperrors.ErrCodeInvalidInput, ErrInvalidSlug.Error())
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	points, err := s.provider.GetAssetHistory(ctx, slug, HistoryInterval, start, end)
	if err != nil {
		return nil, providerFailure(fmt.Sprintf("failed to fetch price history for %s", slug), err)
	}

	history := make([]AssetPrice, 0, len(points))
	for _, p := range points {
		price, err := parsePrice(p.PriceUSD)
		if err != nil {
			return nil, apperrors.PriceFetch(fmt.Sprintf("invalid historical price for %s", slug), err)
		}
		history = append(history, AssetPrice{Timestamp: p.Time, Price: price})
	}

	return history, nil
}

// providerFailure wraps a failed provider call. Throttling gets its own
// message and a "reason" detail so clients know to back off.
func providerFailure(message string, err error) *apperrors.AppError {
	if errors.Is(err, ErrProviderRateLimited) {
		return apperrors.PriceFetch("price provider rate limit exceeded, retry later", err).
			WithDetail("reason", "rate_limited")
	}
	return apperrors.PriceFetch(message, err)
}

func validateRange(start, end *time.Time) error {
	if (start == nil) != (end == nil) {
		return apperrors.Wrap(ErrInvalidTimeRange, apperrors.ErrCodeInvalidInput, "start and end must be provided together")
	}
	if start != nil && start.After(*end) {
		return apperrors.Wrap(ErrInvalidTimeRange, apperrors.ErrCodeInvalidInput, "start must not be after end")
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativePrice, raw)
	}
	return price, nil
}
