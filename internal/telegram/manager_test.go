package telegram

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newWebhookRouter(t *testing.T, secret string) (*gin.Engine, *BotManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := NewClient("123456:test-token")
	manager := NewBotManager(client, &UpdateHandler{}, "123456:test-token", "https://example.com", secret)

	r := gin.New()
	r.POST("/webhook/bot/:secret", manager.HandleWebhook)
	return r, manager
}

func TestTokenSecret(t *testing.T) {
	a := tokenSecret("123456:token-a")
	b := tokenSecret("123456:token-b")

	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
	require.Equal(t, a, tokenSecret("123456:token-a"))
}

func TestHandleWebhookRejectsWrongPath(t *testing.T) {
	r, _ := newWebhookRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/webhook/bot/wrong-secret", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleWebhookRejectsWrongHeaderSecret(t *testing.T) {
	r, m := newWebhookRouter(t, "hook-secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook/bot/"+m.SecretPath(), strings.NewReader("{}"))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "not-the-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleWebhookAcceptsValidUpdate(t *testing.T) {
	r, m := newWebhookRouter(t, "hook-secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook/bot/"+m.SecretPath(), strings.NewReader(`{"update_id":1}`))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "hook-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleWebhookRejectsMalformedBody(t *testing.T) {
	r, m := newWebhookRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/webhook/bot/"+m.SecretPath(), strings.NewReader("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIsCommand(t *testing.T) {
	msg := &Message{
		Text:     "/start",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}
	require.True(t, isCommand(msg, "start"))
	require.False(t, isCommand(msg, "finish"))

	withMention := &Message{
		Text:     "/start@love_game_bot",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 20}},
	}
	require.True(t, isCommand(withMention, "start"))

	plainText := &Message{Text: "/start"}
	require.False(t, isCommand(plainText, "start"))
}

func TestIsCommandRejectsCorruptEntityBounds(t *testing.T) {
	// Entity offsets are attacker-controlled wire data; bounds past the end
	// of the text must not panic the update goroutine.
	overlong := &Message{
		Text:     "/start",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 50}},
	}
	require.False(t, isCommand(overlong, "start"))

	negative := &Message{
		Text:     "/start",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: -1}},
	}
	require.False(t, isCommand(negative, "start"))
}
