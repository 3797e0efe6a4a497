package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hromoibes/love-game-telegram/internal/game"
)

// Client talks to an OpenAI-compatible chat-completions API to produce
// question and summary text. The game engine never calls it directly; the
// bot layer does and substitutes fallbacks when it fails.
type Client struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
}

func NewClient(apiKey, apiURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		model:      model,
	}
}

func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const safetyRules = "Всегда избегай насилия, описаний несовершеннолетних и подробного порно. " +
	"Говори мягко и игриво, без грубости."

// GenerateQuestion asks for one new short question for the current level,
// fed with the recent exchange history so questions build on answers.
func (c *Client) GenerateQuestion(level game.Level, players [2]string, history []game.QAItem) (string, error) {
	prompt := fmt.Sprintf(
		"Ты пишешь один вопрос для пары на русском языке. "+
			"Будь тёплым, смешным и флиртующим, без пошлости. "+
			"Формат ответа игроков: «да», «нет», одно слово или медиа. "+
			"Не повторяй вопросы дословно. "+
			"Текущий уровень: %s %s. "+
			"Партнёры: %s и %s. "+
			"История последнего общения:\n%s\n%s",
		level.Label(), level.Emoji(), players[0], players[1],
		historyText(history), safetyRules,
	)

	text, err := c.complete("Ты помогаешь вести игру-переписку для пары.", prompt)
	if err != nil {
		return "", err
	}
	return cleanQuestion(text), nil
}

// GenerateSummary asks for a short warm recap of the finished game.
func (c *Client) GenerateSummary(players [2]string, history []game.QAItem) (string, error) {
	prompt := fmt.Sprintf(
		"Сделай короткое резюме игры двух людей (%s и %s) по их ответам:\n%s\n\n"+
			"1. Дай тёплое заключение (2–3 предложения)\n"+
			"2. Дай 3 коротких совета улучшения отношений\n"+
			"3. Без морали и без упоминания бывших\n%s",
		players[0], players[1], historyText(history), safetyRules,
	)

	return c.complete("Ты автор коротких и доброжелательных резюме.", prompt)
}

func (c *Client) complete(system, user string) (string, error) {
	if !c.IsAvailable() {
		return "", fmt.Errorf("AI generation is not configured")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.8,
		MaxTokens:   300,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from AI")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func historyText(history []game.QAItem) string {
	if len(history) == 0 {
		return "нет"
	}
	lines := make([]string, 0, len(history))
	for _, item := range history {
		answer := item.Answer
		if answer == "" {
			answer = "нет ответа"
		}
		lines = append(lines, fmt.Sprintf("%s: %s → %s", item.Target, item.Question, answer))
	}
	return strings.Join(lines, "\n")
}

// cleanQuestion strips a leading list marker the model sometimes adds.
func cleanQuestion(text string) string {
	if strings.HasPrefix(text, "1.") || strings.HasPrefix(text, "1)") {
		text = text[2:]
	}
	return strings.TrimSpace(text)
}
