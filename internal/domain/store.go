package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a KeyValueStore when a key is absent or expired
	ErrNotFound = errors.New("key not found")

	// ErrEmptyReply is returned when the AI collaborator produced no text
	ErrEmptyReply = errors.New("empty reply from model")

	// ErrConflict is returned when an atomic update kept losing to concurrent writers
	ErrConflict = errors.New("concurrent update conflict")
)

// UpdateFunc receives the current value (found=false when absent) and returns the value to store
type UpdateFunc func(current string, found bool) (string, error)

// KeyValueStore defines the interface for the session key-value backend.
// All expiry is TTL based; nothing is deleted explicitly.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Update performs an atomic read-modify-write of key
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error
	Ping(ctx context.Context) error
	Close() error
}
