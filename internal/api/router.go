package api

import (
	"net/http"

	"github.com/Rrens/telegram-gemini-bot/internal/api/handler"
	customMiddleware "github.com/Rrens/telegram-gemini-bot/internal/api/middleware"
	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the HTTP router
func NewRouter(webhook *handler.WebhookHandler, store domain.KeyValueStore, llmRouter *llm.Router) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// Telegram posts updates to the root path
	r.HandleFunc("/", webhook.Serve)

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(store))
	r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

	return r
}
