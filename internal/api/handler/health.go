package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/telegram-gemini-bot/internal/api/response"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
)

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including session store connectivity
func ReadyCheck(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			response.ServiceUnavailable(w, "session store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListLLMProviders returns configured LLM providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := []map[string]any{}
		for _, name := range router.ListProviders() {
			p, err := router.GetProvider(name)
			if err != nil {
				continue
			}
			providers = append(providers, map[string]any{
				"name":    name,
				"model":   p.DefaultModel(),
				"default": name == router.DefaultProvider(),
			})
		}

		response.OK(w, providers)
	}
}
