package txpool

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// RedisTagStore shares provides-tags across relay processes, so two nodes
// running against the same pool do not both admit the same unsigned
// transaction. Longevity in blocks is mapped to a TTL via the configured
// block interval; Redis expiry self-cleans.
type RedisTagStore struct {
	client        *redis.Client
	blockInterval time.Duration
}

// NewRedisTagStore connects to Redis at addr. blockInterval is the expected
// wall-clock duration of one block, used to convert tag longevity to a TTL.
func NewRedisTagStore(addr, password string, db int, blockInterval time.Duration) *RedisTagStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisTagStore{client: rdb, blockInterval: blockInterval}
}

// Ping verifies the Redis connection.
func (s *RedisTagStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis tag store unreachable: %w", err)
	}
	return nil
}

// Admit records the tag with SET NX; the TTL covers the longevity window.
func (s *RedisTagStore) Admit(ctx context.Context, tag []byte, _ chain.Height, longevity uint32) (bool, error) {
	key := "edge-connect:tag:" + hex.EncodeToString(tag)
	ttl := time.Duration(longevity) * s.blockInterval
	if ttl <= 0 {
		ttl = s.blockInterval
	}
	fresh, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis tag store error: %w", err)
	}
	return fresh, nil
}
