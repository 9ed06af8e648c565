package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const snapshotPrefix = "snapshot:"

// SnapshotStore implements ports.SnapshotStore using Redis. Records live
// under a shared key prefix so Clear only touches the store's own namespace.
type SnapshotStore struct {
	client *goredis.Client
	prefix string
}

// NewSnapshotStore creates a Redis-backed snapshot store.
func NewSnapshotStore(client *goredis.Client) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		prefix: snapshotPrefix,
	}
}

// Save durably records value under key with no expiry.
func (s *SnapshotStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis snapshot save: %w", err)
	}
	return nil
}

// Load retrieves the value stored under key.
// Returns nil, nil if the key does not exist.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis snapshot load: %w", err)
	}
	return val, nil
}

// Remove deletes the value stored under key.
func (s *SnapshotStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis snapshot remove: %w", err)
	}
	return nil
}

// Clear deletes every record under the snapshot prefix.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis snapshot clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis snapshot clear scan: %w", err)
	}
	return nil
}
