package models

import "time"

// GameRecord is the archived form of a finished game. Live sessions stay
// in memory; only completed games reach the database.
type GameRecord struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	ChatID         int64            `gorm:"not null;index" json:"chat_id"`
	Player1        string           `gorm:"size:100;not null" json:"player1"`
	Player2        string           `gorm:"size:100;not null" json:"player2"`
	FinalLevel     string           `gorm:"size:20;not null" json:"final_level"`
	QuestionsAsked int              `gorm:"not null" json:"questions_asked"`
	MaxQuestions   int              `gorm:"not null" json:"max_questions"`
	Summary        string           `gorm:"type:text" json:"summary"`
	Exchanges      []ExchangeRecord `gorm:"foreignKey:GameRecordID" json:"exchanges,omitempty"`
	FinishedAt     time.Time        `json:"finished_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

type ExchangeRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GameRecordID uint      `gorm:"not null;index" json:"game_record_id"`
	OrderNum     int       `gorm:"not null" json:"order_num"`
	Question     string    `gorm:"type:text;not null" json:"question"`
	Answer       string    `gorm:"size:255" json:"answer"`
	Target       string    `gorm:"size:100" json:"target"`
	Level        string    `gorm:"size:20" json:"level"`
	Skipped      bool      `gorm:"not null;default:false" json:"skipped"`
	AskedAt      time.Time `json:"asked_at"`
}
