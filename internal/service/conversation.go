package service

import (
	"context"
	"fmt"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"github.com/Rrens/telegram-gemini-bot/internal/session"
	"github.com/rs/zerolog/log"
)

// ConversationService runs one user turn against the AI collaborator
type ConversationService struct {
	llmRouter         *llm.Router
	history           *session.History
	systemInstruction string
}

// NewConversationService creates a new conversation service
func NewConversationService(llmRouter *llm.Router, history *session.History, systemInstruction string) *ConversationService {
	return &ConversationService{
		llmRouter:         llmRouter,
		history:           history,
		systemInstruction: llm.SystemInstruction(systemInstruction),
	}
}

// Exchange sends userText to the model seeded with the resolved transcript and
// returns the reply. Both turns are persisted only when the model answers; a
// model error is returned unwrapped and nothing is written. A new session
// replaces any stale document under its key, a continuing one is merged.
func (s *ConversationService) Exchange(ctx context.Context, res session.Resolution, userText string) (string, error) {
	transcript, sessionID := res.Transcript, res.SessionID

	provider, err := s.llmRouter.Default()
	if err != nil {
		return "", fmt.Errorf("failed to get LLM provider: %w", err)
	}

	resp, err := provider.Chat(ctx, llm.ChatRequest{
		History:           transcript.Messages,
		Message:           userText,
		SystemInstruction: s.systemInstruction,
	})
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("session_id", sessionID).
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("history_turns", transcript.Len()).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("LLM response received")

	turns := []domain.Turn{domain.UserTurn(userText), domain.ModelTurn(resp.Text)}
	if res.IsNew {
		_, err = s.history.Start(ctx, sessionID, turns...)
	} else {
		_, err = s.history.Append(ctx, sessionID, transcript, turns...)
	}
	if err != nil {
		return "", fmt.Errorf("failed to persist transcript: %w", err)
	}

	return resp.Text, nil
}
