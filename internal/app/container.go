// Package app wires the service's components together.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/api"
	"github.com/Rrens/telegram-gemini-bot/internal/api/handler"
	"github.com/Rrens/telegram-gemini-bot/internal/config"
	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"github.com/Rrens/telegram-gemini-bot/internal/llm/ark"
	"github.com/Rrens/telegram-gemini-bot/internal/llm/gemini"
	boltrepo "github.com/Rrens/telegram-gemini-bot/internal/repository/bolt"
	redisrepo "github.com/Rrens/telegram-gemini-bot/internal/repository/redis"
	"github.com/Rrens/telegram-gemini-bot/internal/security"
	"github.com/Rrens/telegram-gemini-bot/internal/service"
	"github.com/Rrens/telegram-gemini-bot/internal/session"
	"github.com/Rrens/telegram-gemini-bot/internal/telegram"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
)

const providerInitTimeout = 15 * time.Second

// NewContainer registers every component against cfg. Components are built
// lazily on first Invoke.
func NewContainer(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	RegisterStore(injector)
	RegisterSession(injector)
	RegisterLLM(injector)
	RegisterTelegram(injector)
	RegisterService(injector)
	RegisterAPI(injector)

	return injector
}

// RegisterStore provides the session key-value store selected by store.driver
func RegisterStore(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (domain.KeyValueStore, error) {
		cfg := do.MustInvoke[*config.Config](i)

		switch cfg.Store.Driver {
		case "bolt":
			store, err := boltrepo.Open(cfg.Store.Bolt.Path, cfg.Store.Bolt.SweepInterval)
			if err != nil {
				return nil, err
			}
			log.Info().Str("path", cfg.Store.Bolt.Path).Msg("Using bbolt session store")
			return store, nil
		case "redis":
			client, err := redisrepo.NewClient(cfg.Store.Redis)
			if err != nil {
				return nil, err
			}
			log.Info().Str("addr", cfg.Store.Redis.Addr()).Msg("Using Redis session store")
			return redisrepo.NewStore(client), nil
		default:
			return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
		}
	})
}

// RegisterSession provides the message index, transcript history and resolver
func RegisterSession(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*session.Index, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return session.NewIndex(do.MustInvoke[domain.KeyValueStore](i), cfg.Session.IndexTTL), nil
	})
	do.Provide(injector, func(i do.Injector) (*session.History, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return session.NewHistory(do.MustInvoke[domain.KeyValueStore](i), cfg.Session.TranscriptTTL), nil
	})
	do.Provide(injector, func(i do.Injector) (*session.Resolver, error) {
		return session.NewResolver(
			do.MustInvoke[*session.Index](i),
			do.MustInvoke[*session.History](i),
		), nil
	})
}

// RegisterLLM provides the LLM router with every provider that has credentials
func RegisterLLM(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*llm.Router, error) {
		cfg := do.MustInvoke[*config.Config](i)
		router := llm.NewRouter(cfg.LLM.DefaultProvider)

		log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

		if cfg.LLM.Gemini.APIKey != "" {
			log.Info().Str("model", cfg.LLM.Gemini.Model).Msg("Registering Gemini provider")
			router.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
		} else {
			log.Warn().Msg("Gemini API Key is empty, skipping registration")
		}

		if cfg.LLM.Ark.APIKey != "" {
			ctx, cancel := context.WithTimeout(context.Background(), providerInitTimeout)
			defer cancel()

			p, err := ark.NewProvider(ctx, cfg.LLM.Ark)
			if err != nil {
				return nil, err
			}
			log.Info().Str("model", cfg.LLM.Ark.Model).Msg("Registering Ark provider")
			router.RegisterProvider(p)
		}

		if _, err := router.Default(); err != nil {
			return nil, fmt.Errorf("default LLM provider unavailable: %w", err)
		}
		return router, nil
	})
}

// RegisterTelegram provides the Bot API client and the chat allow-list
func RegisterTelegram(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*telegram.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint, cfg.Telegram.BotUsername, nil)
		if err != nil {
			return nil, err
		}
		log.Info().Str("username", bot.Username()).Msg("Connected to Telegram")
		return bot, nil
	})
	do.Provide(injector, func(i do.Injector) (security.AllowList, error) {
		cfg := do.MustInvoke[*config.Config](i)
		list := security.NewAllowList(cfg.Telegram.AllowedChatIDs...)
		if list.Len() == 0 {
			log.Warn().Msg("ALLOWED_CHAT_IDS is empty, every chat will be rejected")
		} else {
			log.Info().Ints64("chat_ids", list.IDs()).Msg("Chat allow-list loaded")
		}
		return list, nil
	})
}

// RegisterService provides the conversation service and the update dispatcher
func RegisterService(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*service.ConversationService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewConversationService(
			do.MustInvoke[*llm.Router](i),
			do.MustInvoke[*session.History](i),
			cfg.LLM.SystemInstruction,
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*service.Dispatcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		bot := do.MustInvoke[*telegram.Bot](i)
		return service.NewDispatcher(
			bot,
			do.MustInvoke[*session.Resolver](i),
			do.MustInvoke[*session.Index](i),
			do.MustInvoke[*service.ConversationService](i),
			do.MustInvoke[security.AllowList](i),
			service.DispatcherConfig{
				BotUsername:    bot.Username(),
				TypingInterval: cfg.Telegram.TypingInterval,
				MessageLimit:   cfg.Telegram.MessageLimit,
			},
		), nil
	})
}

// RegisterAPI provides the HTTP handler
func RegisterAPI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (http.Handler, error) {
		return api.NewRouter(
			handler.NewWebhookHandler(do.MustInvoke[*service.Dispatcher](i)),
			do.MustInvoke[domain.KeyValueStore](i),
			do.MustInvoke[*llm.Router](i),
		), nil
	})
}
