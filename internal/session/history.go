package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
)

// History stores session transcripts as JSON documents
type History struct {
	store domain.KeyValueStore
	ttl   time.Duration
	now   func() time.Time
}

// NewHistory creates a transcript store with the given retention
func NewHistory(store domain.KeyValueStore, ttl time.Duration) *History {
	return &History{store: store, ttl: ttl, now: time.Now}
}

// Load returns the transcript for sessionID. A missing or expired transcript
// yields an empty one with found=false.
func (h *History) Load(ctx context.Context, sessionID string) (domain.Transcript, bool, error) {
	raw, err := h.store.Get(ctx, SessionKey(sessionID))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewTranscript(), false, nil
	}
	if err != nil {
		return domain.NewTranscript(), false, fmt.Errorf("failed to load transcript %s: %w", sessionID, err)
	}

	t, err := decodeTranscript(raw)
	if err != nil {
		return domain.NewTranscript(), false, fmt.Errorf("failed to decode transcript %s: %w", sessionID, err)
	}
	return t, true, nil
}

// Save overwrites the transcript for sessionID, stamping lastUpdated and refreshing the TTL
func (h *History) Save(ctx context.Context, sessionID string, t domain.Transcript) (domain.Transcript, error) {
	saved := t.Clone()
	saved.LastUpdated = h.now().UTC()

	data, err := json.Marshal(saved)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := h.store.Set(ctx, SessionKey(sessionID), string(data), h.ttl); err != nil {
		return domain.Transcript{}, fmt.Errorf("failed to save transcript %s: %w", sessionID, err)
	}
	return saved, nil
}

// Start overwrites whatever is stored under sessionID with a transcript made
// of turns alone. A brand-new session never inherits a stale document left
// under the same key.
func (h *History) Start(ctx context.Context, sessionID string, turns ...domain.Turn) (domain.Transcript, error) {
	t := domain.NewTranscript()
	t.Append(turns...)
	return h.Save(ctx, sessionID, t)
}

// Append writes base+turns for sessionID. If the stored transcript no longer
// matches base, another exchange saved first and turns are appended to the
// stored transcript instead, so no turn is dropped.
func (h *History) Append(ctx context.Context, sessionID string, base domain.Transcript, turns ...domain.Turn) (domain.Transcript, error) {
	var saved domain.Transcript

	err := h.store.Update(ctx, SessionKey(sessionID), h.ttl, func(current string, found bool) (string, error) {
		next := base.Clone()
		if found {
			if stored, err := decodeTranscript(current); err == nil && !stored.SameAs(base) {
				next = stored
			}
		}
		next.Append(turns...)
		next.LastUpdated = h.now().UTC()

		data, err := json.Marshal(next)
		if err != nil {
			return "", fmt.Errorf("failed to marshal transcript: %w", err)
		}
		saved = next
		return string(data), nil
	})
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("failed to append to transcript %s: %w", sessionID, err)
	}

	return saved, nil
}

func decodeTranscript(raw string) (domain.Transcript, error) {
	var t domain.Transcript
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return domain.Transcript{}, err
	}
	if t.Messages == nil {
		t.Messages = []domain.Turn{}
	}
	return t, nil
}
