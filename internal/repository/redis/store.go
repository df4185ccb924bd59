package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 5

// Store implements domain.KeyValueStore on Redis
type Store struct {
	client *Client
}

// NewStore creates a new Redis backed key-value store
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Get returns the value stored at key or domain.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value at key with the given expiration
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Update runs fn under WATCH and writes its result in a MULTI block.
// A concurrent write to key aborts the transaction and fn is re-run against the new value.
func (s *Store) Update(ctx context.Context, key string, ttl time.Duration, fn domain.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			current, found = "", false
		} else if err != nil {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.rdb.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("failed to update %s after %d attempts: %w", key, maxUpdateAttempts, domain.ErrConflict)
}

// Ping verifies Redis connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.rdb.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
