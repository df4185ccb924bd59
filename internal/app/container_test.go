package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/telegram-gemini-bot/internal/config"
	"github.com/Rrens/telegram-gemini-bot/internal/domain"
	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"github.com/Rrens/telegram-gemini-bot/internal/session"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream fakes both the Bot API and the Gemini API
type upstream struct {
	mu       sync.Mutex
	sent     []string
	geminiIn int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if strings.HasPrefix(r.URL.Path, "/bot") {
		_ = r.ParseForm()
		switch path.Base(r.URL.Path) {
		case "getMe":
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"MFGW","username":"MFGWBot"}}`)
		case "sendMessage":
			u.mu.Lock()
			u.sent = append(u.sent, r.PostForm.Get("text"))
			u.mu.Unlock()
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":101,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
		}
		return
	}

	u.mu.Lock()
	u.geminiIn++
	u.mu.Unlock()
	_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there"}]}}]}`)
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Env: "test",
		Telegram: config.TelegramConfig{
			BotToken:       "123:abc",
			APIEndpoint:    baseURL + "/bot%s/%s",
			AllowedChatIDs: []int64{42},
			TypingInterval: time.Hour,
			MessageLimit:   4000,
		},
		LLM: config.LLMConfig{
			DefaultProvider: "gemini",
			Gemini: config.GeminiConfig{
				APIKey:  "test-key",
				Model:   "gemini-test",
				BaseURL: baseURL,
			},
		},
		Store: config.StoreConfig{
			Driver: "bolt",
			Bolt:   config.BoltConfig{Path: filepath.Join(t.TempDir(), "sessions.bolt")},
		},
		Session: config.SessionConfig{IndexTTL: 24 * time.Hour, TranscriptTTL: 48 * time.Hour},
	}
}

func TestContainer_EndToEnd(t *testing.T) {
	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	injector := NewContainer(testConfig(t, srv.URL))
	store := do.MustInvoke[domain.KeyValueStore](injector)
	t.Cleanup(func() { _ = store.Close() })

	router := do.MustInvoke[http.Handler](injector)

	body := `{"update_id":1,"message":{"message_id":100,"date":1,"text":"Hello","chat":{"id":42,"type":"private"}}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	up.mu.Lock()
	assert.Equal(t, []string{"Hi there"}, up.sent)
	assert.Equal(t, 1, up.geminiIn)
	up.mu.Unlock()

	history := do.MustInvoke[*session.History](injector)
	tr, found, err := history.Load(t.Context(), "100")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []domain.Turn{domain.UserTurn("Hello"), domain.ModelTurn("Hi there")}, tr.Messages)

	index := do.MustInvoke[*session.Index](injector)
	sessionID, found, err := index.GetMessageSession(t.Context(), "101")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "100", sessionID)
}

func TestContainer_RejectsUnlistedChat(t *testing.T) {
	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	injector := NewContainer(testConfig(t, srv.URL))
	store := do.MustInvoke[domain.KeyValueStore](injector)
	t.Cleanup(func() { _ = store.Close() })

	body := `{"update_id":2,"message":{"message_id":5,"date":1,"text":"Hello","chat":{"id":77,"type":"private"}}}`
	rec := httptest.NewRecorder()
	do.MustInvoke[http.Handler](injector).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	up.mu.Lock()
	defer up.mu.Unlock()
	require.Len(t, up.sent, 1)
	assert.Contains(t, up.sent[0], "77")
	assert.Equal(t, 0, up.geminiIn)
}

func TestContainer_DefaultProviderMissing(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.LLM.Gemini.APIKey = ""

	_, err := do.Invoke[*llm.Router](NewContainer(cfg))
	assert.Error(t, err)
}
