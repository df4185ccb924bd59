package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	method string
	form   url.Values
}

type fakeBotAPI struct {
	mu    sync.Mutex
	calls []apiCall
	srv   *httptest.Server
}

func newFakeBotAPI(t *testing.T) *fakeBotAPI {
	t.Helper()
	f := &fakeBotAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBotAPI) endpoint() string {
	return f.srv.URL + "/bot%s/%s"
}

func (f *fakeBotAPI) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := path.Base(r.URL.Path)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, form: r.PostForm})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"MFGW","username":"MFGWBot"}}`)
	case "sendMessage":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":101,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	case "getWebhookInfo":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"url":"https://example.com/hook","has_custom_certificate":false,"pending_update_count":3}}`)
	case "sendChatAction", "setWebhook":
		_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
	default:
		_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func (f *fakeBotAPI) lastCall(method string) (apiCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i], true
		}
	}
	return apiCall{}, false
}

func TestNewBot_ResolvesUsername(t *testing.T) {
	api := newFakeBotAPI(t)

	bot, err := NewBot("123:abc", api.endpoint(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "MFGWBot", bot.Username())

	bot, err = NewBot("123:abc", api.endpoint(), "OtherBot", nil)
	require.NoError(t, err)
	assert.Equal(t, "OtherBot", bot.Username())
}

func TestBot_SendMessage(t *testing.T) {
	api := newFakeBotAPI(t)
	bot, err := NewBot("123:abc", api.endpoint(), "", nil)
	require.NoError(t, err)

	id, err := bot.SendMessage(context.Background(), OutgoingMessage{
		ChatID:           42,
		Text:             "<b>Hi</b> there",
		ParseMode:        tgbotapi.ModeHTML,
		ReplyToMessageID: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 101, id)

	call, ok := api.lastCall("sendMessage")
	require.True(t, ok)
	assert.Equal(t, "42", call.form.Get("chat_id"))
	assert.Equal(t, "<b>Hi</b> there", call.form.Get("text"))
	assert.Equal(t, "HTML", call.form.Get("parse_mode"))
	assert.Equal(t, "100", call.form.Get("reply_to_message_id"))
}

func TestBot_SendTyping(t *testing.T) {
	api := newFakeBotAPI(t)
	bot, err := NewBot("123:abc", api.endpoint(), "", nil)
	require.NoError(t, err)

	require.NoError(t, bot.SendTyping(context.Background(), -100200))

	call, ok := api.lastCall("sendChatAction")
	require.True(t, ok)
	assert.Equal(t, "-100200", call.form.Get("chat_id"))
	assert.Equal(t, "typing", call.form.Get("action"))
}

func TestBot_CancelledContext(t *testing.T) {
	api := newFakeBotAPI(t)
	bot, err := NewBot("123:abc", api.endpoint(), "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = bot.SendMessage(ctx, OutgoingMessage{ChatID: 42, Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	_, sent := api.lastCall("sendMessage")
	assert.False(t, sent)
}

func TestBot_Webhook(t *testing.T) {
	api := newFakeBotAPI(t)
	bot, err := NewBot("123:abc", api.endpoint(), "", nil)
	require.NoError(t, err)

	require.NoError(t, bot.SetWebhook("https://example.com/hook"))
	call, ok := api.lastCall("setWebhook")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/hook", call.form.Get("url"))

	info, err := bot.WebhookInfo()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", info.URL)
	assert.Equal(t, 3, info.PendingUpdateCount)
}
