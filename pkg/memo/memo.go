package memo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	fjerrors "github.com/vnykmshr/forkjoin/pkg/common/errors"
	"github.com/vnykmshr/forkjoin/pkg/common/validation"
	"github.com/vnykmshr/forkjoin/pkg/metrics"
)

// ComputeFunc produces the value for a missing cache key.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Cache memoizes computation results in Redis.
type Cache interface {
	// Get returns the cached value for key, or ErrCacheMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the cache TTL.
	Set(ctx context.Context, key string, value []byte) error

	// Do returns the cached value for key, computing and storing it on a
	// miss. Concurrent callers for the same key coordinate through a Redis
	// lock so the computation runs once; losers poll until the value
	// appears or ctx is done.
	Do(ctx context.Context, key string, compute ComputeFunc) ([]byte, error)

	// Invalidate removes key from the cache. Removing an absent key is
	// not an error.
	Invalidate(ctx context.Context, key string) error

	// Stats returns hit/miss counters for this cache instance.
	Stats() Stats

	// Close releases the cache. The Redis client is not closed; it
	// belongs to the caller.
	Close() error
}

// Stats holds per-instance cache counters.
type Stats struct {
	Hits     int64
	Misses   int64
	Computes int64
	Errors   int64
}

// Config holds configuration for a memoization cache.
type Config struct {
	// Redis client used for storage.
	Redis redis.UniversalClient

	// Prefix namespaces this cache's keys.
	Prefix string

	// TTL is how long computed values live. Defaults to 5 minutes.
	TTL time.Duration

	// LockTTL bounds how long a compute lock is held before another
	// caller may retry the computation. Defaults to 30 seconds.
	LockTTL time.Duration

	// PollInterval is how often waiting callers re-check for a value
	// being computed elsewhere. Defaults to 25ms.
	PollInterval time.Duration

	// Metrics receives hit/miss counters when set.
	Metrics *metrics.Registry

	// Name labels this cache in metrics. Defaults to the prefix.
	Name string
}

// DefaultConfig returns a memoization cache configuration with defaults.
func DefaultConfig() Config {
	return Config{
		TTL:          5 * time.Minute,
		LockTTL:      30 * time.Second,
		PollInterval: 25 * time.Millisecond,
	}
}

type cache struct {
	config Config

	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
	errors   atomic.Int64
}

// New creates a Redis-backed memoization cache.
func New(config Config) (Cache, error) {
	if config.Redis == nil {
		return nil, validation.ValidateNotNil("memo", "redis", nil)
	}
	if err := validation.ValidateNotEmpty("memo", "prefix", config.Prefix); err != nil {
		return nil, err
	}

	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 30 * time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 25 * time.Millisecond
	}
	if config.Name == "" {
		config.Name = config.Prefix
	}

	return &cache{config: config}, nil
}

func (c *cache) valueKey(key string) string {
	return "forkjoin:memo:" + c.config.Prefix + ":" + key
}

func (c *cache) lockKey(key string) string {
	return c.valueKey(key) + ":lock"
}

func (c *cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.config.Redis.Get(ctx, c.valueKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.miss()
		return nil, fjerrors.ErrCacheMiss
	}
	if err != nil {
		c.errors.Add(1)
		return nil, fmt.Errorf("memo get %q: %w", key, err)
	}
	c.hit()
	return val, nil
}

func (c *cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.config.Redis.Set(ctx, c.valueKey(key), value, c.config.TTL).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("memo set %q: %w", key, err)
	}
	return nil
}

func (c *cache) Do(ctx context.Context, key string, compute ComputeFunc) ([]byte, error) {
	if compute == nil {
		return nil, validation.ValidateNotNil("memo", "compute", nil)
	}

	for {
		val, err := c.Get(ctx, key)
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, fjerrors.ErrCacheMiss) {
			return nil, err
		}

		acquired, err := c.config.Redis.SetNX(ctx, c.lockKey(key), 1, c.config.LockTTL).Result()
		if err != nil {
			c.errors.Add(1)
			return nil, fmt.Errorf("memo lock %q: %w", key, err)
		}

		if acquired {
			return c.computeAndStore(ctx, key, compute)
		}

		// Someone else is computing; wait for their value to land or
		// for their lock to expire, then retry.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.PollInterval):
		}
	}
}

func (c *cache) computeAndStore(ctx context.Context, key string, compute ComputeFunc) ([]byte, error) {
	defer c.config.Redis.Del(context.WithoutCancel(ctx), c.lockKey(key))

	c.computes.Add(1)
	val, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, val); err != nil {
		return nil, err
	}
	return val, nil
}

func (c *cache) Invalidate(ctx context.Context, key string) error {
	if err := c.config.Redis.Del(ctx, c.valueKey(key)).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("memo invalidate %q: %w", key, err)
	}
	return nil
}

func (c *cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Computes: c.computes.Load(),
		Errors:   c.errors.Load(),
	}
}

func (c *cache) Close() error {
	return nil
}

func (c *cache) hit() {
	c.hits.Add(1)
	if c.config.Metrics != nil {
		c.config.Metrics.MemoHits.WithLabelValues(c.config.Name).Inc()
	}
}

func (c *cache) miss() {
	c.misses.Add(1)
	if c.config.Metrics != nil {
		c.config.Metrics.MemoMisses.WithLabelValues(c.config.Name).Inc()
	}
}
