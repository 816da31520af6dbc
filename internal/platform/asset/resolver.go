package asset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// searchPageSize is how many candidates are scanned for an exact symbol match.
const searchPageSize = 8

// SymbolResolver maps ticker symbols to provider slugs. Entries are never
// evicted. Concurrent misses on one symbol may each query the provider;
// they store the same slug.
type SymbolResolver struct {
	provider PriceProvider
	store    SlugStore
	slugs    sync.Map // upper-cased symbol -> slug
	logger   *logger.Logger
}

// NewSymbolResolver creates a resolver. store may be nil.
func NewSymbolResolver(provider PriceProvider, store SlugStore, log *logger.Logger) *SymbolResolver {
	return &SymbolResolver{
		provider: provider,
		store:    store,
		logger:   log.WithComponent("symbol_resolver"),
	}
}

// Resolve returns the provider slug for symbol.
func (r *SymbolResolver) Resolve(ctx context.Context, symbol string) (string, error) {
	key := NormalizeSymbol(symbol)
	if key == "" {
		return "", apperrors.Wrap(ErrInvalidSymbol, apperrors.ErrCodeInvalidInput, "symbol is required")
	}

	if slug, ok := r.slugs.Load(key); ok {
		return slug.(string), nil
	}

	if r.store != nil {
		slug, found, err := r.store.GetSlug(ctx, key)
		if err != nil {
			r.logger.Warn("shared slug store read failed", "symbol", key, "error", err)
		} else if found {
			r.slugs.Store(key, slug)
			return slug, nil
		}
	}

	candidates, err := r.provider.SearchAssets(ctx, key, searchPageSize, 0)
	if err != nil {
		return "", providerFailure(fmt.Sprintf("failed to search for %s", key), err)
	}

	for _, c := range candidates {
		if c.Slug != "" && strings.EqualFold(c.Symbol, key) {
			r.slugs.Store(key, c.Slug)
			r.logger.Debug("resolved symbol", "symbol", key, "slug", c.Slug)
			if r.store != nil {
				if err := r.store.SetSlug(ctx, key, c.Slug); err != nil {
					r.logger.Warn("shared slug store write failed", "symbol", key, "error", err)
				}
			}
			return c.Slug, nil
		}
	}

	return "", apperrors.PriceFetch(fmt.Sprintf("cannot resolve symbol %s", key), ErrSlugNotFound).
		WithDetail("symbol", key)
}

// Len reports the number of cached entries.
func (r *SymbolResolver) Len() int {
	n := 0
	r.slugs.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
