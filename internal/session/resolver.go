package session

import (
	"context"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/rs/zerolog/log"
)

// Resolution is the session an incoming message belongs to
type Resolution struct {
	SessionID  string
	Transcript domain.Transcript
	IsNew      bool
}

// Resolver turns (message, replied-to message) pairs into sessions
type Resolver struct {
	index   *Index
	history *History
}

// NewResolver creates a session resolver
func NewResolver(index *Index, history *History) *Resolver {
	return &Resolver{index: index, history: history}
}

// Resolve determines the session for messageID. repliedToID is empty when the
// message is not a reply. Store failures degrade to a fresh session and are
// never returned; exactly one index entry is written per call.
func (r *Resolver) Resolve(ctx context.Context, messageID, repliedToID string) Resolution {
	res := Resolution{
		SessionID:  messageID,
		Transcript: domain.NewTranscript(),
		IsNew:      true,
	}

	if repliedToID != "" {
		sessionID, found, err := r.index.GetMessageSession(ctx, repliedToID)
		if err != nil {
			log.Warn().Err(err).Str("replied_to", repliedToID).Msg("session lookup failed, starting fresh")
		}
		if found {
			res.SessionID = sessionID
			res.IsNew = false
		}
	}

	if err := r.index.SetMessageSession(ctx, messageID, res.SessionID); err != nil {
		log.Warn().Err(err).Str("message_id", messageID).Str("session_id", res.SessionID).Msg("failed to index message")
	}

	if res.IsNew {
		return res
	}

	transcript, found, err := r.history.Load(ctx, res.SessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", res.SessionID).Msg("transcript load failed, using empty history")
	}
	if found {
		res.Transcript = transcript
	}

	return res
}
