package game

import "time"

// Answer sentinels stored in QAItem.Answer for non-text outcomes.
const (
	SkipAnswer  = "<пропуск>"
	MediaAnswer = "<media>"
)

type Status string

const (
	StatusSetup            Status = "setup"
	StatusAwaitingQuestion Status = "awaiting_question"
	StatusAwaitingAnswer   Status = "awaiting_answer"
	StatusFinished         Status = "finished"
)

// QAItem is one question/answer exchange. Items are owned by the session
// history and only ever mutated to attach an answer or mark a skip.
type QAItem struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer,omitempty"`
	Target    string    `json:"target"`
	Level     Level     `json:"level"`
	Skipped   bool      `json:"skipped"`
	CreatedAt time.Time `json:"created_at"`
}

func (q QAItem) Answered() bool {
	return q.Answer != ""
}

// Session is one chat's game. At most one per chat, mutated only by the
// engine under its lock.
type Session struct {
	ChatID           int64     `json:"chat_id"`
	Players          [2]string `json:"players"`
	Level            Level     `json:"level"`
	Turn             int       `json:"turn"`
	SkipsLeft        [2]int    `json:"skips_left"`
	History          []QAItem  `json:"history"`
	WaitingForAnswer bool      `json:"waiting_for_answer"`
	PendingIndex     int       `json:"pending_index"`
	QuestionsAsked   int       `json:"questions_asked"`
	MaxQuestions     int       `json:"max_questions"`
	CreatedAt        time.Time `json:"created_at"`
}

func (s *Session) CurrentPlayer() string {
	return s.Players[s.Turn]
}

func (s *Session) SetupComplete() bool {
	return s.Players[0] != "" && s.Players[1] != ""
}

// Finished reports the terminal condition: the question budget is spent
// and the last question has been answered or skipped.
// MaxQuestions == 0 means the game is unbounded.
func (s *Session) Finished() bool {
	return s.MaxQuestions > 0 && s.QuestionsAsked >= s.MaxQuestions && !s.WaitingForAnswer
}

func (s *Session) Status() Status {
	switch {
	case !s.SetupComplete():
		return StatusSetup
	case s.Finished():
		return StatusFinished
	case s.WaitingForAnswer:
		return StatusAwaitingAnswer
	default:
		return StatusAwaitingQuestion
	}
}

// RecentHistory returns up to n most recent exchanges, oldest first.
func (s *Session) RecentHistory(n int) []QAItem {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	out := make([]QAItem, len(s.History)-start)
	copy(out, s.History[start:])
	return out
}

// clone returns a detached copy safe to hand outside the engine lock.
func (s *Session) clone() *Session {
	cp := *s
	cp.History = make([]QAItem, len(s.History))
	copy(cp.History, s.History)
	return &cp
}
