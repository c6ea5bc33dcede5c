package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipe-search/backend/internal/filter"
	"github.com/pageza/recipe-search/backend/internal/types"
)

const cacheKeyPrefix = "recipes:v1:"

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipe_cache_lookups_total",
		Help: "Page cache lookups by result",
	},
	[]string{"result"},
)

// CacheStore is the subset of the Redis client used by the page cache.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedRecipeService serves repeated queries from Redis. The dataset is
// read-only while the API runs, so entries only expire by TTL. Cache
// failures fall through to the wrapped service.
type CachedRecipeService struct {
	next   IRecipeService
	store  CacheStore
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRecipeService wraps next with a Redis page cache.
func NewCachedRecipeService(next IRecipeService, store CacheStore, ttl time.Duration, logger *slog.Logger) *CachedRecipeService {
	return &CachedRecipeService{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *CachedRecipeService) Search(ctx context.Context, q *filter.ParsedQuery) (*types.PageResult, error) {
	key := cacheKeyPrefix + q.Key()

	if page, ok := s.lookup(ctx, key); ok {
		return page, nil
	}

	page, err := s.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := s.store.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "failed to store page in cache", "key", key, "error", err)
		}
	}
	return page, nil
}

func (s *CachedRecipeService) lookup(ctx context.Context, key string) (*types.PageResult, bool) {
	data, err := s.store.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		cacheLookups.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "failed to read page from cache", "key", key, "error", err)
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var page types.PageResult
	if err := dec.Decode(&page); err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	if page.Data == nil {
		page.Data = []types.Recipe{}
	}

	cacheLookups.WithLabelValues("hit").Inc()
	return &page, true
}
