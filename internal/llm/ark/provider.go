package ark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/config"
	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

// Provider serves chats through a Volcengine Ark model via eino.
// Ark has no hosted search or URL tools, so replies rely on model knowledge only.
type Provider struct {
	chatModel model.BaseChatModel
	model     string
	toolsOnce sync.Once
}

// NewProvider builds an Ark chat model. A config without an API key yields an
// unconfigured provider rather than an error.
func NewProvider(ctx context.Context, cfg config.ArkConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return &Provider{model: cfg.Model}, nil
	}

	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	return NewProviderWithModel(cm, cfg.Model), nil
}

// NewProviderWithModel wraps an existing eino chat model
func NewProviderWithModel(cm model.BaseChatModel, modelName string) *Provider {
	return &Provider{chatModel: cm, model: modelName}
}

func (p *Provider) Name() string {
	return "ark"
}

func (p *Provider) DefaultModel() string {
	return p.model
}

func (p *Provider) IsConfigured() bool {
	return p.chatModel != nil
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("ark provider is not configured (missing API key)")
	}

	p.toolsOnce.Do(func() {
		log.Warn().Str("provider", p.Name()).Msg("web search and URL context tools are unavailable on this provider")
	})

	start := time.Now()
	resp, err := p.chatModel.Generate(ctx, messages(req))
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("ark generation error: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return nil, domain.ErrEmptyReply
	}

	tokensUsed := 0
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		tokensUsed = resp.ResponseMeta.Usage.TotalTokens
	}

	return &llm.ChatResponse{
		Text:       resp.Content,
		Model:      p.model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

func messages(req llm.ChatRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		msgs = append(msgs, schema.SystemMessage(req.SystemInstruction))
	}
	for _, t := range req.History {
		if t.Role == domain.RoleModel {
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
		} else {
			msgs = append(msgs, schema.UserMessage(t.Content))
		}
	}
	return append(msgs, schema.UserMessage(req.Message))
}
