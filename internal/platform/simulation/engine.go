package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

const (
	// Lookback is how far before the target timestamp a price may be taken from.
	Lookback = 5 * time.Minute

	// performanceScale is the number of fractional digits kept in the
	// value/baseline ratio before it is turned into a percentage.
	performanceScale = 6
)

var hundred = decimal.NewFromInt(100)

// HistoricalPriceSource is the part of asset.PriceService the engine needs.
type HistoricalPriceSource interface {
	GetHistoricalPrices(ctx context.Context, symbol string, start, end *time.Time) ([]asset.AssetPrice, error)
}

// Engine values hypothetical portfolios at past timestamps.
type Engine struct {
	prices HistoricalPriceSource
	now    func() time.Time
	logger *logger.Logger
}

// NewEngine creates a simulation engine
func NewEngine(prices HistoricalPriceSource, log *logger.Logger) *Engine {
	return &Engine{
		prices: prices,
		now:    time.Now,
		logger: log.WithComponent("simulation"),
	}
}

// Simulate prices every requested position at req.Timestamp. Positions with
// no price in the lookback window are dropped from the assets and the total.
func (e *Engine) Simulate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(e.now()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	end := req.Timestamp
	start := end.Add(-Lookback)

	valuations := make([]asset.Valuation, 0, len(req.Assets))
	total := decimal.Zero

	for _, ra := range req.Assets {
		history, err := e.prices.GetHistoricalPrices(ctx, ra.Symbol, &start, &end)
		if err != nil {
			return nil, fmt.Errorf("failed to price %s: %w", ra.Symbol, err)
		}
		if len(history) == 0 {
			e.logger.WithContext(ctx).Info("no historical price in window, excluding asset",
				"symbol", ra.Symbol, "timestamp", req.Timestamp)
			continue
		}

		point := history[0]
		value := ra.Quantity.Mul(point.Price)
		ts := point.Timestamp
		valuations = append(valuations, asset.Valuation{
			Symbol:    ra.Symbol,
			Quantity:  ra.Quantity,
			Price:     point.Price,
			Value:     value,
			Timestamp: &ts,
		})
		total = total.Add(value)
	}

	baselines := make(map[string]decimal.Decimal, len(req.Assets))
	for _, ra := range req.Assets {
		baselines[ra.Symbol] = ra.Value
	}

	result := &Result{
		Timestamp:        req.Timestamp,
		Total:            total,
		BestPerformance:  decimal.Zero,
		WorstPerformance: decimal.Zero,
		Assets:           valuations,
	}

	for i, v := range valuations {
		baseline, ok := baselines[v.Symbol]
		if !ok {
			return nil, apperrors.Internal("simulation baseline lookup failed", fmt.Errorf("%w: %s", ErrMissingBaseline, v.Symbol))
		}

		perf := Performance(v.Value, baseline)
		if i == 0 || perf.GreaterThan(result.BestPerformance) {
			result.BestAsset, result.BestPerformance = v.Symbol, perf
		}
		if i == 0 || perf.LessThan(result.WorstPerformance) {
			result.WorstAsset, result.WorstPerformance = v.Symbol, perf
		}
	}

	return result, nil
}

// Performance returns ((current - baseline) / baseline) * 100 with the ratio
// rounded half away from zero to six digits. A zero baseline yields zero.
func Performance(current, baseline decimal.Decimal) decimal.Decimal {
	if baseline.IsZero() {
		return decimal.Zero
	}
	return current.Sub(baseline).DivRound(baseline, performanceScale).Mul(hundred)
}
