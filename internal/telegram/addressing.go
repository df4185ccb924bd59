package telegram

import (
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// IsAddressed reports whether msg should be answered by the bot named handle.
// Private chats are always addressed; in groups the text must mention @handle
// or the message must reply to one of the bot's own messages.
func IsAddressed(msg *tgbotapi.Message, handle string) bool {
	if msg == nil {
		return false
	}
	if msg.Chat != nil && msg.Chat.IsPrivate() {
		return true
	}
	if handle == "" {
		return false
	}

	if strings.Contains(msg.Text, "@"+handle) {
		return true
	}

	reply := msg.ReplyToMessage
	return reply != nil && reply.From != nil && reply.From.IsBot && reply.From.UserName == handle
}

// StripMention removes every literal, case-sensitive "@handle" together with
// the whitespace that follows it, then trims the result.
func StripMention(text, handle string) string {
	if handle == "" {
		return strings.TrimSpace(text)
	}
	re := regexp.MustCompile(regexp.QuoteMeta("@"+handle) + `\s*`)
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}
