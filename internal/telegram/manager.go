package telegram

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BotManager owns the single bot's webhook lifecycle. The webhook path
// carries a digest of the token so it cannot be guessed from the outside.
type BotManager struct {
	client         *Client
	handler        *UpdateHandler
	webhookBaseURL string
	webhookSecret  string
	secretPath     string
}

func NewBotManager(client *Client, handler *UpdateHandler, token, webhookBaseURL, webhookSecret string) *BotManager {
	return &BotManager{
		client:         client,
		handler:        handler,
		webhookBaseURL: webhookBaseURL,
		webhookSecret:  webhookSecret,
		secretPath:     tokenSecret(token),
	}
}

func tokenSecret(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h[:16])
}

func (m *BotManager) SecretPath() string {
	return m.secretPath
}

func (m *BotManager) Start() error {
	webhookURL := fmt.Sprintf("%s/webhook/bot/%s", m.webhookBaseURL, m.secretPath)
	if err := m.client.SetWebhook(webhookURL, m.webhookSecret); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	log.Printf("[BotManager] webhook registered: %s", webhookURL)
	return nil
}

func (m *BotManager) Stop() {
	if err := m.client.DeleteWebhook(); err != nil {
		log.Printf("[BotManager] delete webhook: %v", err)
	}
	log.Println("[BotManager] stopped")
}

func (m *BotManager) HandleWebhook(c *gin.Context) {
	if c.Param("secret") != m.secretPath {
		c.Status(http.StatusNotFound)
		return
	}

	if m.webhookSecret != "" {
		headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if headerSecret != m.webhookSecret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go m.handler.Handle(upd)

	c.Status(http.StatusOK)
}
