// Package snapshotcache caches the latest book Snapshot per symbol in
// Redis, so read-only consumers (market data distribution, a depth API)
// can serve a recent view without going through the matching engine's
// per-symbol lock.
package snapshotcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

// Config mirrors joripage's RedisConfig.
type Config struct {
	ConnectionURL       string `yaml:"connection_url"`
	PoolSize            int    `yaml:"pool_size"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`

	// TTL bounds how long a cached snapshot is served before it's
	// considered too stale to trust; callers should treat a cache miss
	// the same as an expired entry and fall through to a live snapshot.
	TTL time.Duration `yaml:"ttl"`
}

func connect(cfg *Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	opts.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
	opts.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	opts.ConnMaxIdleTime = time.Duration(cfg.IdleTimeoutSeconds) * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// Cache wraps a *redis.Client scoped to one key prefix.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg *Config) (*Cache, error) {
	client, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func key(symbol string) string { return "lob:snapshot:" + symbol }

// Put stores snap under its symbol's key with the configured TTL.
func (c *Cache) Put(ctx context.Context, snap orderbook.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(snap.Symbol), b, c.ttl).Err()
}

// Get returns the cached snapshot for symbol, or (zero, false) on a
// miss or expiry.
func (c *Cache) Get(ctx context.Context, symbol string) (orderbook.Snapshot, bool) {
	b, err := c.client.Get(ctx, key(symbol)).Bytes()
	if err != nil {
		return orderbook.Snapshot{}, false
	}
	var snap orderbook.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return orderbook.Snapshot{}, false
	}
	return snap, true
}

func (c *Cache) Close() error {
	return c.client.Close()
}
