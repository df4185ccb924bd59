package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/config"
	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"google.golang.org/genai"
)

type Provider struct {
	apiKey           string
	model            string
	baseURL          string
	enableSearch     bool
	enableURLContext bool
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		baseURL:          cfg.BaseURL,
		enableSearch:     cfg.EnableSearch,
		enableURLContext: cfg.EnableURLContext,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	cc := &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	chat, err := client.Chats.Create(ctx, model, p.generateConfig(req.SystemInstruction), history(req.History))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini chat: %w", err)
	}

	start := time.Now()
	resp, err := chat.SendMessage(ctx, genai.Part{Text: req.Message})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	output := resp.Text()
	if output == "" {
		return nil, domain.ErrEmptyReply
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.ChatResponse{
		Text:       output,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

func (p *Provider) generateConfig(systemInstruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if p.enableSearch {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if p.enableURLContext {
		cfg.Tools = append(cfg.Tools, &genai.Tool{URLContext: &genai.URLContext{}})
	}
	return cfg
}

// history maps stored turns onto chat contents, preserving order
func history(turns []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == domain.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	return contents
}
