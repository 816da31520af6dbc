package asset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kislikjeka/coinwallet/pkg/logger"
)

const (
	// DefaultUpdateInterval is the default interval between refresh runs
	DefaultUpdateInterval = 60 * time.Second

	// DefaultConcurrency is the default number of in-flight price fetches
	DefaultConcurrency = 3
)

// PriceUpdater periodically refreshes the stored USD price of every asset.
// A run that starts while another is still in progress is skipped.
type PriceUpdater struct {
	repo        Repository
	prices      CurrentPriceFetcher
	interval    time.Duration
	concurrency int64
	running     atomic.Bool
	now         func() time.Time
	logger      *logger.Logger
}

// PriceUpdaterConfig holds configuration for the price updater
type PriceUpdaterConfig struct {
	Interval    time.Duration
	Concurrency int
	Logger      *logger.Logger
}

// NewPriceUpdater creates a new price updater
func NewPriceUpdater(repo Repository, prices CurrentPriceFetcher, config *PriceUpdaterConfig) *PriceUpdater {
	interval := DefaultUpdateInterval
	concurrency := DefaultConcurrency
	log := logger.NewDefault("production")

	if config != nil {
		if config.Interval > 0 {
			interval = config.Interval
		}
		if config.Concurrency > 0 {
			concurrency = config.Concurrency
		}
		if config.Logger != nil {
			log = config.Logger
		}
	}

	return &PriceUpdater{
		repo:        repo,
		prices:      prices,
		interval:    interval,
		concurrency: int64(concurrency),
		now:         time.Now,
		logger:      log.WithComponent("price_updater"),
	}
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
// Each run is started in the background; Run waits for the last one before
// returning.
func (u *PriceUpdater) Run(ctx context.Context) {
	u.logger.Info("price updater started", "interval", u.interval, "concurrency", u.concurrency)

	var wg sync.WaitGroup
	trigger := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.RefreshAll(ctx)
		}()
	}

	trigger()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			u.logger.Info("price updater stopped")
			return
		case <-ticker.C:
			trigger()
		}
	}
}

// IsRunning reports whether a refresh run is in progress.
func (u *PriceUpdater) IsRunning() bool {
	return u.running.Load()
}

// RefreshAll walks every stored asset and refreshes its price with at most
// concurrency fetches in flight. Per-asset failures are logged and never
// stop the run.
func (u *PriceUpdater) RefreshAll(ctx context.Context) {
	if !u.running.CompareAndSwap(false, true) {
		u.logger.Warn("price refresh already running, skipping")
		return
	}
	defer u.running.Store(false)

	start := time.Now()
	u.logger.Info("price refresh started")

	sem := semaphore.NewWeighted(u.concurrency)
	var (
		wg                          sync.WaitGroup
		succeeded, failed, skipped atomic.Int64
	)

	for a, err := range u.repo.StreamAll(ctx) {
		if err != nil {
			u.logger.Error("failed to stream assets", "error", err)
			break
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			u.logger.Warn("interrupted waiting for refresh permit, skipping asset", "asset", a.ID, "error", err)
			skipped.Add(1)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := u.refreshAsset(ctx, a); err != nil {
				u.logger.Error("failed to refresh asset price", "asset", a.ID, "error", err)
				failed.Add(1)
				return
			}
			succeeded.Add(1)
		}()
	}

	wg.Wait()

	u.logger.Info("price refresh completed",
		"success_count", succeeded.Load(),
		"fail_count", failed.Load(),
		"skipped_count", skipped.Load(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (u *PriceUpdater) refreshAsset(ctx context.Context, a *Asset) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic refreshing %s: %v", a.ID, r)
		}
	}()

	price, err := u.prices.GetCurrentPriceBySymbol(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch price: %w", err)
	}

	updated := *a
	updated.USDPrice = price.Price
	updated.UpdatedAt = u.now()

	if err := u.repo.Save(ctx, &updated); err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}

	u.logger.Debug("asset price refreshed", "asset", a.ID, "usd_price", updated.USDPrice.String())
	return nil
}
