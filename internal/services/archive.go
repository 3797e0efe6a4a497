package services

import (
	"errors"
	"time"

	"github.com/hromoibes/love-game-telegram/internal/game"
	"github.com/hromoibes/love-game-telegram/internal/models"

	"gorm.io/gorm"
)

type ArchiveService struct {
	db *gorm.DB
}

func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{db: db}
}

// ArchiveGame writes the final state of a finished session, history
// included, in one transaction.
func (s *ArchiveService) ArchiveGame(sess *game.Session, summary string) (*models.GameRecord, error) {
	if sess == nil {
		return nil, errors.New("nil session")
	}

	record := models.GameRecord{
		ChatID:         sess.ChatID,
		Player1:        sess.Players[0],
		Player2:        sess.Players[1],
		FinalLevel:     string(sess.Level),
		QuestionsAsked: sess.QuestionsAsked,
		MaxQuestions:   sess.MaxQuestions,
		Summary:        summary,
		FinishedAt:     time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for i, item := range sess.History {
			exchange := models.ExchangeRecord{
				GameRecordID: record.ID,
				OrderNum:     i + 1,
				Question:     item.Question,
				Answer:       item.Answer,
				Target:       item.Target,
				Level:        string(item.Level),
				Skipped:      item.Skipped,
				AskedAt:      item.CreatedAt,
			}
			if err := tx.Create(&exchange).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// History returns archived games for one chat, newest first.
func (s *ArchiveService) History(chatID int64, limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []models.GameRecord
	if err := s.db.Where("chat_id = ?", chatID).
		Order("finished_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ArchiveService) ListRecent(limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []models.GameRecord
	if err := s.db.Order("finished_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ArchiveService) GetRecord(id uint) (*models.GameRecord, error) {
	var record models.GameRecord
	if err := s.db.Preload("Exchanges", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_num ASC")
	}).First(&record, id).Error; err != nil {
		return nil, errors.New("game record not found")
	}
	return &record, nil
}
