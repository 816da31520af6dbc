package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// SlugKeyPrefix is the prefix for symbol to slug keys
const SlugKeyPrefix = "slug:"

// SlugStore shares resolved provider slugs between processes.
// Entries never expire: a symbol's slug does not change.
type SlugStore struct {
	client *redis.Client
	logger *logger.Logger
}

var _ asset.SlugStore = (*SlugStore)(nil)

// NewSlugStore creates a Redis-backed slug store
func NewSlugStore(client *redis.Client, log *logger.Logger) *SlugStore {
	return &SlugStore{
		client: client,
		logger: log.WithComponent("slug_store"),
	}
}

// GetSlug returns the stored slug for an upper-cased symbol
func (s *SlugStore) GetSlug(ctx context.Context, symbol string) (string, bool, error) {
	slug, err := s.client.Get(ctx, SlugKeyPrefix+symbol).Result()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("slug miss", "symbol", symbol)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get slug: %w", err)
	}

	return slug, true, nil
}

// SetSlug stores a slug without expiry
func (s *SlugStore) SetSlug(ctx context.Context, symbol, slug string) error {
	if err := s.client.Set(ctx, SlugKeyPrefix+symbol, slug, 0).Err(); err != nil {
		return fmt.Errorf("failed to set slug: %w", err)
	}
	return nil
}

// Ping checks the Redis server
func (s *SlugStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
