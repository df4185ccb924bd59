package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultHTTPTimeout = 30 * time.Second

// Bot implements Messenger on the Telegram Bot API
type Bot struct {
	api      *tgbotapi.BotAPI
	username string
}

// NewBot connects to the Bot API at endpoint (a "%s/%s" token/method pattern)
// and resolves the bot's own username via getMe. A non-empty username
// overrides the resolved one.
func NewBot(token, endpoint, username string, client *http.Client) (*Bot, error) {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	if username == "" {
		username = api.Self.UserName
	}

	return &Bot{api: api, username: username}, nil
}

// Username returns the bot handle without the leading @
func (b *Bot) Username() string {
	return b.username
}

// SendMessage sends a text message, optionally threaded as a reply
func (b *Bot) SendMessage(ctx context.Context, msg OutgoingMessage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	cfg.ParseMode = msg.ParseMode
	cfg.ReplyToMessageID = msg.ReplyToMessageID

	sent, err := b.api.Send(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", msg.ChatID, err)
	}
	return sent.MessageID, nil
}

// SendTyping shows the typing indicator in chatID
func (b *Bot) SendTyping(ctx context.Context, chatID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		return fmt.Errorf("failed to send typing to chat %d: %w", chatID, err)
	}
	return nil
}

// SetWebhook registers url as the bot's webhook
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// WebhookInfo returns the current webhook registration
func (b *Bot) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return tgbotapi.WebhookInfo{}, fmt.Errorf("failed to get webhook info: %w", err)
	}
	return info, nil
}
