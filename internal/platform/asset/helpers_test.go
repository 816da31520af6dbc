package asset_test

import (
	"context"
	"io"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

// =============================================================================
// MockPriceProvider
// =============================================================================

type MockPriceProvider struct {
	mock.Mock
}

var _ asset.PriceProvider = (*MockPriceProvider)(nil)

func (m *MockPriceProvider) SearchAssets(ctx context.Context, query string, limit, offset int) ([]asset.ProviderAsset, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]asset.ProviderAsset), args.Error(1)
}

func (m *MockPriceProvider) GetAsset(ctx context.Context, slug string) (*asset.ProviderQuote, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.ProviderQuote), args.Error(1)
}

func (m *MockPriceProvider) GetAssetHistory(ctx context.Context, slug, interval string, start, end *time.Time) ([]asset.ProviderPricePoint, error) {
	args := m.Called(ctx, slug, interval, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]asset.ProviderPricePoint), args.Error(1)
}

func (m *MockPriceProvider) GetPricesBySymbols(ctx context.Context, symbols []string) (*asset.ProviderBatchQuote, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.ProviderBatchQuote), args.Error(1)
}

// =============================================================================
// MockSlugStore
// =============================================================================

type MockSlugStore struct {
	mock.Mock
}

var _ asset.SlugStore = (*MockSlugStore)(nil)

func (m *MockSlugStore) GetSlug(ctx context.Context, symbol string) (string, bool, error) {
	args := m.Called(ctx, symbol)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSlugStore) SetSlug(ctx context.Context, symbol, slug string) error {
	args := m.Called(ctx, symbol, slug)
	return args.Error(0)
}

// =============================================================================
// memRepo: in-memory asset.Repository
// =============================================================================

type memRepo struct {
	mu      sync.Mutex
	assets  map[string]asset.Asset
	saves   int
	creates int
}

var _ asset.Repository = (*memRepo)(nil)

func newMemRepo(assets ...asset.Asset) *memRepo {
	r := &memRepo{assets: make(map[string]asset.Asset)}
	for _, a := range assets {
		r.assets[a.ID] = a
	}
	return r
}

func (r *memRepo) GetByID(_ context.Context, id string) (*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, asset.ErrAssetNotFound
	}
	return &a, nil
}

func (r *memRepo) GetByIDs(_ context.Context, ids []string) ([]*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*asset.Asset
	for _, id := range ids {
		if a, ok := r.assets[id]; ok {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *memRepo) Create(_ context.Context, a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[a.ID]; ok {
		return asset.ErrDuplicateAsset
	}
	r.assets[a.ID] = *a
	r.creates++
	return nil
}

func (r *memRepo) Save(_ context.Context, a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[a.ID]; !ok {
		return asset.ErrAssetNotFound
	}
	r.assets[a.ID] = *a
	r.saves++
	return nil
}

func (r *memRepo) StreamAll(_ context.Context) iter.Seq2[*asset.Asset, error] {
	r.mu.Lock()
	ids := make([]string, 0, len(r.assets))
	for id := range r.assets {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	return func(yield func(*asset.Asset, error) bool) {
		for _, id := range ids {
			r.mu.Lock()
			a := r.assets[id]
			r.mu.Unlock()
			if !yield(&a, nil) {
				return
			}
		}
	}
}

func (r *memRepo) get(id string) asset.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assets[id]
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
