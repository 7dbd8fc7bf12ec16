// Package cache memoizes job search answers in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/aggregate"
	"github.com/JakeFAU/opportunity-discovery/internal/metrics"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

const (
	keyPrefix  = "jobs:v1:"
	defaultTTL = 15 * time.Minute
)

// Client is the subset of redis.Cmdable the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// SearchCache serves repeated job searches from Redis. Only successful
// answers are stored. Redis failures fall through to the wrapped Searcher.
type SearchCache struct {
	next   aggregate.Searcher
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSearchCache wraps next. A non-positive ttl uses 15 minutes.
func NewSearchCache(next aggregate.Searcher, client Client, ttl time.Duration, logger *zap.Logger) *SearchCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchCache{next: next, client: client, ttl: ttl, logger: logger.Named("search_cache")}
}

// Key derives the cache key for hints.
func Key(hints source.Hints) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(hints.Keyword)),
		strings.ToLower(strings.TrimSpace(hints.Location)),
		strconv.Itoa(hints.PageOrDefault()),
		strconv.Itoa(hints.PageSizeOrDefault(0)),
	}
	return keyPrefix + strings.Join(parts, "|")
}

// Search returns the cached answer for hints or asks the wrapped Searcher.
func (c *SearchCache) Search(ctx context.Context, hints source.Hints) (aggregate.SearchResult, error) {
	key := Key(hints)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached aggregate.SearchResult
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.ObserveCacheLookup("hit")
			return cached, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		metrics.ObserveCacheLookup("miss")
	case errors.Is(err, redis.Nil):
		metrics.ObserveCacheLookup("miss")
	default:
		metrics.ObserveCacheLookup("error")
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}

	result, err := c.next.Search(ctx, hints)
	if err != nil {
		return result, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("encode cache entry failed", zap.Error(err))
		return result, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}
