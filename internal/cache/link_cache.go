package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/metrics"
	"github.com/decepticons/linkshortener/internal/model"
)

var (
	ErrCacheMiss  = errors.New("cache miss")
	ErrCacheError = errors.New("cache error")
)

const (
	keyPrefix = "link:"
	linkTTL   = 24 * time.Hour
)

// LinkCache is a lookaside cache keyed by short code. The lifecycle
// manager calls Put or Evict right after every store write, but the two
// writes are separate steps: a concurrent reader can observe a stale
// entry in the window between the store commit and the cache update.
// That window is bounded and resolves on the next access; the store
// stays the source of truth.
type LinkCache interface {
	Get(ctx context.Context, code string) (*model.Link, error)
	Put(ctx context.Context, code string, link *model.Link) error
	Evict(ctx context.Context, code string) error
}

// RedisLinkCache implements LinkCache on a Redis client.
type RedisLinkCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisLinkCache(client *redis.Client) *RedisLinkCache {
	return &RedisLinkCache{
		client: client,
		logger: zap.L().With(zap.String("component", "RedisLinkCache")),
	}
}

func (c *RedisLinkCache) Get(ctx context.Context, code string) (*model.Link, error) {
	val, err := c.client.Get(ctx, keyPrefix+code).Result()
	if err == redis.Nil {
		metrics.CacheMissesTotal.WithLabelValues("link").Inc()
		return nil, ErrCacheMiss
	}
	if err != nil {
		c.logger.Warn("Cache read failed", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("%w: %v", ErrCacheError, err)
	}

	var link model.Link
	if err := json.Unmarshal([]byte(val), &link); err != nil {
		// A corrupt entry is as good as a miss; drop it.
		c.logger.Warn("Corrupt cache entry", zap.Error(err), zap.String("code", code))
		c.client.Del(ctx, keyPrefix+code)
		return nil, ErrCacheMiss
	}

	metrics.CacheHitsTotal.WithLabelValues("link").Inc()
	return &link, nil
}

func (c *RedisLinkCache) Put(ctx context.Context, code string, link *model.Link) error {
	payload, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheError, err)
	}

	if err := c.client.Set(ctx, keyPrefix+code, payload, linkTTL).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.Error(err), zap.String("code", code))
		return fmt.Errorf("%w: %v", ErrCacheError, err)
	}
	return nil
}

func (c *RedisLinkCache) Evict(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, keyPrefix+code).Err(); err != nil {
		c.logger.Warn("Cache eviction failed", zap.Error(err), zap.String("code", code))
		return fmt.Errorf("%w: %v", ErrCacheError, err)
	}
	return nil
}
