// Package session maps platform message identifiers onto conversation
// sessions and persists each session's transcript in a key-value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
)

const (
	messageSessionPrefix = "message-session:"
	sessionPrefix        = "session:"
)

// MessageSessionKey returns the index key for a message id
func MessageSessionKey(messageID string) string {
	return messageSessionPrefix + messageID
}

// SessionKey returns the transcript key for a session id
func SessionKey(sessionID string) string {
	return sessionPrefix + sessionID
}

// Index maps a message identifier to the session it belongs to
type Index struct {
	store domain.KeyValueStore
	ttl   time.Duration
}

// NewIndex creates a message-to-session index with the given retention
func NewIndex(store domain.KeyValueStore, ttl time.Duration) *Index {
	return &Index{store: store, ttl: ttl}
}

// SetMessageSession records that messageID belongs to sessionID, refreshing its TTL
func (i *Index) SetMessageSession(ctx context.Context, messageID, sessionID string) error {
	if err := i.store.Set(ctx, MessageSessionKey(messageID), sessionID, i.ttl); err != nil {
		return fmt.Errorf("failed to index message %s: %w", messageID, err)
	}
	return nil
}

// GetMessageSession returns the session for messageID; found is false when no entry exists
func (i *Index) GetMessageSession(ctx context.Context, messageID string) (string, bool, error) {
	sessionID, err := i.store.Get(ctx, MessageSessionKey(messageID))
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up message %s: %w", messageID, err)
	}
	return sessionID, true, nil
}
