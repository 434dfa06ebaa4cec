package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

type fakeCmdable struct {
	values map[string]string
}

func (f *fakeCmdable) Ping(ctx context.Context) *redislib.StatusCmd {
	return redislib.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redislib.StatusCmd {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return redislib.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redislib.StringCmd {
	val, ok := f.values[key]
	if !ok {
		return redislib.NewStringResult("", redislib.Nil)
	}
	return redislib.NewStringResult(val, nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redislib.NewIntResult(removed, nil)
}

func TestBlobKeyNamespacing(t *testing.T) {
	t.Parallel()

	c := &Client{}
	if got := c.BlobKey("cart"); got != "hw:blob:cart" {
		t.Fatalf("unexpected blob key %q", got)
	}
}

func TestGetMapsNilToNotFound(t *testing.T) {
	t.Parallel()

	c := &Client{store: &fakeCmdable{}}
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, err := c.Get(ctx, "k")
	if err != nil || val != "v" {
		t.Fatalf("get returned %q, %v", val, err)
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	t.Parallel()

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address is set")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 5 {
		t.Fatalf("options not applied: %+v", opts)
	}
}
