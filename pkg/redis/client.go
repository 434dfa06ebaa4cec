package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace = "hw"
	blobPrefix   = "blob"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("redis: key not found")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis connection helpers used as a shared blob backend
// when several kiosks point at one cart.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// BlobKey namespaces a local-store blob key.
func (c *Client) BlobKey(name string) string {
	return strings.Join([]string{keyNamespace, blobPrefix, name}, ":")
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Set stores a value without expiry.
func (c *Client) Set(ctx context.Context, key string, value any) error {
	return c.store.Set(ctx, key, value, 0).Err()
}

// Get fetches the value for a key, mapping redis.Nil to ErrNotFound.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

// Del removes the given keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
