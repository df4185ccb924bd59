package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/security"
	"github.com/Rrens/telegram-gemini-bot/internal/session"
	"github.com/Rrens/telegram-gemini-bot/internal/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Outcome is the terminal state of one webhook update
type Outcome string

const (
	// OutcomeIgnored: no text message, or nothing left after stripping the mention
	OutcomeIgnored Outcome = "ignored"
	// OutcomeRejected: chat not allow-listed, an explanatory reply was sent
	OutcomeRejected Outcome = "rejected"
	// OutcomeNotAddressed: group message not directed at the bot
	OutcomeNotAddressed Outcome = "not_addressed"
	OutcomeReplied      Outcome = "replied"
	OutcomeFailed       Outcome = "failed"
)

const (
	defaultTypingInterval = 5 * time.Second
	defaultMessageLimit   = 4000
)

// DispatcherConfig holds the per-process settings of the dispatcher
type DispatcherConfig struct {
	BotUsername    string
	TypingInterval time.Duration
	MessageLimit   int
}

// Dispatcher handles one Telegram update end to end
type Dispatcher struct {
	messenger    telegram.Messenger
	resolver     *session.Resolver
	index        *session.Index
	conversation *ConversationService
	allowList    security.AllowList
	cfg          DispatcherConfig
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(
	messenger telegram.Messenger,
	resolver *session.Resolver,
	index *session.Index,
	conversation *ConversationService,
	allowList security.AllowList,
	cfg DispatcherConfig,
) *Dispatcher {
	if cfg.TypingInterval <= 0 {
		cfg.TypingInterval = defaultTypingInterval
	}
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = defaultMessageLimit
	}

	return &Dispatcher{
		messenger:    messenger,
		resolver:     resolver,
		index:        index,
		conversation: conversation,
		allowList:    allowList,
		cfg:          cfg,
	}
}

// HandleUpdate processes update and reports how it ended. A non-nil error
// means the caller should answer the webhook with a server error.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update *tgbotapi.Update) (Outcome, error) {
	msg, ok := telegram.IncomingText(update)
	if !ok {
		log.Debug().Msg("update without text message ignored")
		return OutcomeIgnored, nil
	}

	logger := log.With().
		Str("exchange_id", uuid.NewString()).
		Int64("chat_id", msg.Chat.ID).
		Int("message_id", msg.MessageID).
		Logger()

	outcome, sessionID, err := d.dispatch(logger.WithContext(ctx), msg)

	var ev *zerolog.Event
	if err != nil {
		ev = logger.Error().Err(err)
	} else {
		ev = logger.Info()
	}
	ev.Str("session_id", sessionID).Str("outcome", string(outcome)).Msg("update handled")

	return outcome, err
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *tgbotapi.Message) (Outcome, string, error) {
	chatID := msg.Chat.ID

	if !d.allowList.Allows(chatID) {
		_, err := d.messenger.SendMessage(ctx, telegram.OutgoingMessage{
			ChatID:           chatID,
			Text:             rejectionText(chatID),
			ReplyToMessageID: msg.MessageID,
		})
		if err != nil {
			return OutcomeFailed, "", fmt.Errorf("failed to send rejection: %w", err)
		}
		return OutcomeRejected, "", nil
	}

	if !telegram.IsAddressed(msg, d.cfg.BotUsername) {
		return OutcomeNotAddressed, "", nil
	}

	userText := telegram.StripMention(msg.Text, d.cfg.BotUsername)
	if userText == "" {
		return OutcomeIgnored, "", nil
	}

	res := d.resolver.Resolve(ctx, telegram.MessageKey(msg.MessageID), telegram.RepliedToKey(msg))

	var reply string
	err := telegram.KeepTyping(ctx, d.messenger, chatID, d.cfg.TypingInterval, func(ctx context.Context) error {
		var err error
		reply, err = d.conversation.Exchange(ctx, res, userText)
		return err
	})
	if err != nil {
		return OutcomeFailed, res.SessionID, fmt.Errorf("exchange failed: %w", err)
	}

	for _, chunk := range telegram.SplitMessage(reply, d.cfg.MessageLimit) {
		sentID, err := d.messenger.SendMessage(ctx, telegram.OutgoingMessage{
			ChatID:           chatID,
			Text:             telegram.FormatHTML(chunk),
			ParseMode:        tgbotapi.ModeHTML,
			ReplyToMessageID: msg.MessageID,
		})
		if err != nil {
			return OutcomeFailed, res.SessionID, fmt.Errorf("failed to send reply: %w", err)
		}

		if err := d.index.SetMessageSession(ctx, telegram.MessageKey(sentID), res.SessionID); err != nil {
			return OutcomeFailed, res.SessionID, err
		}
	}

	return OutcomeReplied, res.SessionID, nil
}

func rejectionText(chatID int64) string {
	return fmt.Sprintf("Sorry, this bot is not enabled for this chat (chat id %d). Ask the bot owner to add it to the allow-list.", chatID)
}
