package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lab1702/solar-web/apperr"
	"github.com/lab1702/solar-web/config"
	"github.com/lab1702/solar-web/solar"
	"github.com/redis/go-redis/v9"
)

const CacheKey = "solar:comets"

// Cache stores the mapped comet bodies between restarts of the feed
type Cache interface {
	Get(ctx context.Context) ([]solar.BodySpec, bool, error)
	Set(ctx context.Context, specs []solar.BodySpec, ttl time.Duration) error
}

// MemoryCache is the in-process fallback when Redis is disabled
type MemoryCache struct {
	mu      sync.Mutex
	specs   []solar.BodySpec
	expires time.Time
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context) ([]solar.BodySpec, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.specs == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	out := make([]solar.BodySpec, len(c.specs))
	copy(out, c.specs)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, specs []solar.BodySpec, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = make([]solar.BodySpec, len(specs))
	copy(c.specs, specs)
	c.expires = c.now().Add(ttl)
	return nil
}

// RedisCache keeps the comet bodies as one JSON value
type RedisCache struct {
	client *redis.Client
	key    string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, key: CacheKey}
}

func (c *RedisCache) Get(ctx context.Context) ([]solar.BodySpec, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.WrapExternal("failed to read comet cache", err)
	}
	var specs []solar.BodySpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, false, apperr.WrapValidation("corrupt comet cache entry", err)
	}
	return specs, true, nil
}

func (c *RedisCache) Set(ctx context.Context, specs []solar.BodySpec, ttl time.Duration) error {
	data, err := json.Marshal(specs)
	if err != nil {
		return apperr.WrapInternal("failed to encode comet cache entry", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return apperr.WrapExternal("failed to write comet cache", err)
	}
	return nil
}

// ConnectRedis opens and pings a Redis client. It returns nil, nil when Redis
// is disabled so callers fall back to the memory cache.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	logger := slog.With("component", "redis", "operation", "connect")

	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory comet cache")
		return nil, nil
	}

	var rdb *redis.Client
	if cfg.URL != "" {
		logger.Debug("Connecting to Redis using URL")
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		logger.Debug("Connecting to Redis using host/port",
			"host", cfg.Host,
			"port", cfg.Port)
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}
