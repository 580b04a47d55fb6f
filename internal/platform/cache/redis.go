package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a shared cache store backed by a Redis instance. Failures degrade
// to cache misses; the resolver recomputes rather than erroring.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	r.client.Set(ctx, r.prefix+key, value, r.ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, r.prefix+key)
}
