package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Rrens/telegram-gemini-bot/internal/api/response"
	"github.com/Rrens/telegram-gemini-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const instructions = "This is a Telegram webhook endpoint. Telegram delivers updates here with POST; register it with setWebhook."

// UpdateDispatcher processes one decoded update
type UpdateDispatcher interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update) (service.Outcome, error)
}

// WebhookHandler receives Telegram updates
type WebhookHandler struct {
	dispatcher UpdateDispatcher
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(dispatcher UpdateDispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// Serve handles POST updates and answers any other method with usage instructions
func (h *WebhookHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.OK(w, map[string]string{"message": instructions})
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Error().Err(err).Msg("failed to decode webhook payload")
		response.InternalError(w, "invalid update payload")
		return
	}

	// the exchange runs to completion even if Telegram drops the connection
	ctx := context.WithoutCancel(r.Context())

	outcome, err := h.dispatcher.HandleUpdate(ctx, &update)
	if err != nil {
		response.InternalError(w, "failed to process update")
		return
	}

	response.OK(w, map[string]string{
		"outcome": string(outcome),
	})
}
