package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StateStoreRedis keeps tracker keys as plain redis strings without expiry.
type StateStoreRedis struct {
	client *redis.Client
	prefix string
}

func NewStateStoreRedis(client *redis.Client, prefix string) *StateStoreRedis {
	return &StateStoreRedis{client: client, prefix: prefix}
}

func (s *StateStoreRedis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return value, true, nil
}

func (s *StateStoreRedis) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStoreRedis) Close() error {
	return s.client.Close()
}
