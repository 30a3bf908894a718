package replay

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with SET NX PX so that every instance of a
// service shares the same view of used codes.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	if client == nil {
		panic("replay: redis client is required")
	}
	return &RedisStore{client: client}
}

func (s *RedisStore) MarkUsed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}
