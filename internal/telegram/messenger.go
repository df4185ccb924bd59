// Package telegram talks to the Telegram Bot API and holds the message
// rules that depend on it: addressing, mention stripping and formatting.
package telegram

import "context"

// OutgoingMessage is a text message to deliver to a chat
type OutgoingMessage struct {
	ChatID int64
	Text   string
	// ParseMode is empty for plain text or tgbotapi.ModeHTML
	ParseMode        string
	ReplyToMessageID int
}

// Messenger sends messages and chat actions to the chat platform
type Messenger interface {
	// SendMessage delivers msg and returns the id of the sent message
	SendMessage(ctx context.Context, msg OutgoingMessage) (int, error)
	SendTyping(ctx context.Context, chatID int64) error
}
