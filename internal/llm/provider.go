package llm

import (
	"context"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
)

// ChatRequest contains one conversational turn plus the history it continues
type ChatRequest struct {
	// History is replayed in order before Message
	History           []domain.Turn
	Message           string
	SystemInstruction string
	Model             string
}

// ChatResponse contains the generated reply
type ChatResponse struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Chat seeds a chat with req.History and sends req.Message as the next user turn
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
