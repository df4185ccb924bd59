package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	redisrepo "github.com/Rrens/telegram-gemini-bot/internal/repository/redis"
	"github.com/Rrens/telegram-gemini-bot/internal/security"
	"github.com/Rrens/telegram-gemini-bot/internal/session"
	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	privateChatID int64 = 42
	groupChatID   int64 = -1001234
	botHandle           = "MFGWBot"
)

type harness struct {
	mr           *miniredis.Miniredis
	index        *session.Index
	history      *session.History
	resolver     *session.Resolver
	provider     *MockProvider
	messenger    *MockMessenger
	conversation *ConversationService
	dispatcher   *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := redisrepo.NewStore(redisrepo.NewClientFromRDB(rdb))
	t.Cleanup(func() { _ = store.Close() })

	index := session.NewIndex(store, 24*time.Hour)
	history := session.NewHistory(store, 48*time.Hour)

	provider := new(MockProvider)
	provider.On("Name").Return("gemini").Maybe()
	provider.On("IsConfigured").Return(true).Maybe()
	provider.On("DefaultModel").Return("gemini-test").Maybe()

	router := llm.NewRouter("gemini")
	router.RegisterProvider(provider)

	messenger := new(MockMessenger)
	messenger.On("SendTyping", mock.Anything, mock.Anything).Return(nil).Maybe()

	conversation := NewConversationService(router, history, "")
	resolver := session.NewResolver(index, history)
	dispatcher := NewDispatcher(
		messenger,
		resolver,
		index,
		conversation,
		security.NewAllowList(privateChatID, groupChatID),
		DispatcherConfig{BotUsername: botHandle, TypingInterval: time.Hour},
	)

	return &harness{
		mr:           mr,
		index:        index,
		history:      history,
		resolver:     resolver,
		provider:     provider,
		messenger:    messenger,
		conversation: conversation,
		dispatcher:   dispatcher,
	}
}

func (h *harness) transcript(t *testing.T, sessionID string) domain.Transcript {
	t.Helper()
	tr, found, err := h.history.Load(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, found, "transcript for session %s", sessionID)
	return tr
}

func (h *harness) sessionOf(t *testing.T, messageID string) string {
	t.Helper()
	sessionID, found, err := h.index.GetMessageSession(context.Background(), messageID)
	require.NoError(t, err)
	require.True(t, found, "index entry for message %s", messageID)
	return sessionID
}

func privateUpdate(id int, text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			Text:      text,
			Chat:      &tgbotapi.Chat{ID: privateChatID, Type: "private"},
			From:      &tgbotapi.User{ID: 7, UserName: "alice"},
		},
	}
}

func groupUpdate(id int, text string) *tgbotapi.Update {
	u := privateUpdate(id, text)
	u.Message.Chat = &tgbotapi.Chat{ID: groupChatID, Type: "supergroup"}
	return u
}

func replyTo(u *tgbotapi.Update, id int, fromBot bool) *tgbotapi.Update {
	from := &tgbotapi.User{ID: 7, UserName: "alice"}
	if fromBot {
		from = &tgbotapi.User{ID: 1, IsBot: true, UserName: botHandle}
	}
	u.Message.ReplyToMessage = &tgbotapi.Message{MessageID: id, From: from}
	return u
}

func chatRequest(history []domain.Turn, message string) interface{} {
	return mock.MatchedBy(func(req llm.ChatRequest) bool {
		if req.Message != message || len(req.History) != len(history) {
			return false
		}
		for i := range history {
			if req.History[i] != history[i] {
				return false
			}
		}
		return req.SystemInstruction == llm.DefaultSystemInstruction
	})
}
