package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store provides prefixed JSON get/set on top of Client
type Store struct {
	client *Client
	prefix string
}

// NewStore creates a new store; every key is namespaced under prefix
func NewStore(client *Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return fmt.Sprintf("%s:%s", s.prefix, k)
}

// GetJSON loads key into dest. found is false on a miss or when Redis is disabled.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.client.Enabled() {
		return false, nil
	}

	data, err := s.client.Redis().Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value under key. ttl 0 keeps the key forever.
func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.client.Redis().Set(ctx, s.key(key), data, ttl).Err()
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.client.Enabled() {
		return nil
	}
	return s.client.Redis().Del(ctx, s.key(key)).Err()
}
