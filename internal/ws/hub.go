package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types broadcast to chat monitors.
const (
	EventQuestionIssued  = "question_issued"
	EventAnswerRecorded  = "answer_recorded"
	EventQuestionSkipped = "question_skipped"
	EventLevelChanged    = "level_changed"
	EventGameFinished    = "game_finished"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans game events out to WebSocket observers, keyed by chat.
type Hub struct {
	mu    sync.RWMutex
	chats map[int64]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		chats: make(map[int64]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(chatID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.chats[chatID] == nil {
		h.chats[chatID] = make(map[*websocket.Conn]bool)
	}
	h.chats[chatID][conn] = true
	log.Printf("ws: monitor connected to chat %d (total: %d)", chatID, len(h.chats[chatID]))
}

func (h *Hub) RemoveConnection(chatID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.chats[chatID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.chats, chatID)
		}
		log.Printf("ws: monitor disconnected from chat %d", chatID)
	}
}

// Broadcast holds the write lock for the whole fan-out: game events for one
// chat can arrive from concurrent update goroutines, and both the connection
// map and each gorilla conn allow only one writer at a time.
func (h *Hub) Broadcast(chatID int64, message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.chats[chatID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(h.chats, chatID)
	}
}
