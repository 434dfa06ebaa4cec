package persist

import (
	"context"
	"errors"
	"fmt"

	redisclient "github.com/angelmondragon/havenwood-client/pkg/redis"
)

// RedisBlobs stores blobs in Redis so a fleet of kiosks can share one cart.
type RedisBlobs struct {
	client *redisclient.Client
}

func NewRedisBlobs(client *redisclient.Client) (*RedisBlobs, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisBlobs{client: client}, nil
}

func (r *RedisBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.client.BlobKey(key))
	if errors.Is(err, redisclient.ErrNotFound) {
		return nil, ErrNoBlob
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (r *RedisBlobs) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.BlobKey(key), string(value))
}

func (r *RedisBlobs) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.BlobKey(key))
}
