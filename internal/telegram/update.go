package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// IncomingText returns the update's message when it carries text.
// Edits, callbacks and non-text messages report ok=false.
func IncomingText(update *tgbotapi.Update) (*tgbotapi.Message, bool) {
	if update == nil || update.Message == nil {
		return nil, false
	}
	msg := update.Message
	if msg.Chat == nil || msg.Text == "" {
		return nil, false
	}
	return msg, true
}

// MessageKey formats a message id for use as a store key component
func MessageKey(id int) string {
	return strconv.Itoa(id)
}

// RepliedToKey returns the key of the message msg replies to, or "" when it is not a reply
func RepliedToKey(msg *tgbotapi.Message) string {
	if msg.ReplyToMessage == nil {
		return ""
	}
	return MessageKey(msg.ReplyToMessage.MessageID)
}
