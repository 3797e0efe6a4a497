package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/hromoibes/love-game-telegram/internal/game"
	"github.com/hromoibes/love-game-telegram/internal/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	engine  *game.Engine
	archive *services.ArchiveService
}

func NewGameHandler(engine *game.Engine, archive *services.ArchiveService) *GameHandler {
	return &GameHandler{engine: engine, archive: archive}
}

type LiveGameSummary struct {
	ChatID         int64       `json:"chat_id"`
	Players        [2]string   `json:"players"`
	Level          game.Level  `json:"level"`
	Status         game.Status `json:"status"`
	CurrentPlayer  string      `json:"current_player,omitempty"`
	QuestionsAsked int         `json:"questions_asked"`
	MaxQuestions   int         `json:"max_questions"`
	SkipsLeft      [2]int      `json:"skips_left"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ListActive returns a snapshot of all live sessions, newest first.
func (h *GameHandler) ListActive(c *gin.Context) {
	sessions := h.engine.ActiveSessions()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	out := make([]LiveGameSummary, 0, len(sessions))
	for _, s := range sessions {
		summary := LiveGameSummary{
			ChatID:         s.ChatID,
			Players:        s.Players,
			Level:          s.Level,
			Status:         s.Status(),
			QuestionsAsked: s.QuestionsAsked,
			MaxQuestions:   s.MaxQuestions,
			SkipsLeft:      s.SkipsLeft,
			CreatedAt:      s.CreatedAt,
		}
		if s.SetupComplete() {
			summary.CurrentPlayer = s.CurrentPlayer()
		}
		out = append(out, summary)
	}

	c.JSON(http.StatusOK, out)
}

func (h *GameHandler) ListArchive(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.archive.ListRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *GameHandler) GetArchived(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid record id"})
		return
	}

	record, err := h.archive.GetRecord(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *GameHandler) ChatHistory(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid chat id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.archive.History(chatID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}
