package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hromoibes/love-game-telegram/internal/game"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)

		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"content": content}},
				},
			})
		} else {
			w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
		}
	}))
}

func TestGenerateQuestion(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "  1. Какое ласковое слово тебе нравится?  ")
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4o-mini")
	q, err := c.GenerateQuestion(game.LevelHot, [2]string{"Ann", "Ben"}, []game.QAItem{
		{Target: "Ann", Question: "Вопрос?", Answer: "да"},
	})
	require.NoError(t, err)
	require.Equal(t, "Какое ласковое слово тебе нравится?", q)
}

func TestGenerateSummary(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "Вы отлично справились ❤️")
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4o-mini")
	s, err := c.GenerateSummary([2]string{"Ann", "Ben"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Вы отлично справились ❤️", s)
}

func TestGenerateQuestionAPIError(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4o-mini")
	_, err := c.GenerateQuestion(game.LevelLight, [2]string{"Ann", "Ben"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", "https://api.example.com/v1", "gpt-4o-mini")
	require.False(t, c.IsAvailable())

	_, err := c.GenerateQuestion(game.LevelLight, [2]string{"Ann", "Ben"}, nil)
	require.Error(t, err)
}

func TestHistoryText(t *testing.T) {
	require.Equal(t, "нет", historyText(nil))

	got := historyText([]game.QAItem{
		{Target: "Ann", Question: "Первый?", Answer: "да"},
		{Target: "Ben", Question: "Второй?"},
	})
	require.Equal(t, "Ann: Первый? → да\nBen: Второй? → нет ответа", got)
}
