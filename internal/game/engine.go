package game

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultSkipBudget    = 1
	DefaultMaxQuestions  = 10
	DefaultProbUp        = 0.7
	DefaultProbDown      = 0.3
	DefaultAnswerTimeout = 60 * time.Second
)

type Config struct {
	SkipBudget    int
	MaxQuestions  int
	ProbUp        float64
	ProbDown      float64
	AnswerTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SkipBudget <= 0 {
		c.SkipBudget = DefaultSkipBudget
	}
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = DefaultMaxQuestions
	}
	if c.ProbUp <= 0 {
		c.ProbUp = DefaultProbUp
	}
	if c.ProbDown <= 0 {
		c.ProbDown = DefaultProbDown
	}
	if c.AnswerTimeout <= 0 {
		c.AnswerTimeout = DefaultAnswerTimeout
	}
	return c
}

// PendingReminderFunc receives the still-pending question when the answer
// timeout elapses. Supplied by the transport layer.
type PendingReminderFunc func(chatID int64, item QAItem, player string)

// AnswerResult describes a completed RecordAnswer operation.
type AnswerResult struct {
	Session      *Session
	Item         QAItem
	LevelChanged bool
	OldLevel     Level
	NewLevel     Level
	Finished     bool
}

// Engine is the per-chat game state machine. Every public operation is
// atomic with respect to a single session: the engine lock covers the
// read-check-mutate cycle, including scheduler arm/disarm, so a timeout
// firing concurrently with an answer can never observe a half-updated
// session.
type Engine struct {
	mu     sync.Mutex
	store  *Store
	chance Chance
	sched  *ReminderScheduler
	cfg    Config
	remind PendingReminderFunc
}

func NewEngine(store *Store, chance Chance, cfg Config) *Engine {
	e := &Engine{
		store:  store,
		chance: chance,
		cfg:    cfg.withDefaults(),
	}
	e.sched = NewReminderScheduler(e.onReminderFired)
	return e
}

// SetReminderFunc installs the transport callback for answer-timeout
// reminders. Must be called before the first question is issued.
func (e *Engine) SetReminderFunc(fn PendingReminderFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remind = fn
}

func (e *Engine) Scheduler() *ReminderScheduler {
	return e.sched
}

// Shutdown cancels every armed reminder. Sessions stay in the store.
func (e *Engine) Shutdown() {
	e.sched.Stop()
}

// StartSetup clears any prior game for the chat and creates a placeholder
// awaiting player names and level.
func (e *Engine) StartSetup(chatID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sched.Disarm(chatID)
	e.store.StartSetup(chatID)
}

// CreateSession installs a ready-to-play session, replacing any prior one.
// maxQuestions <= 0 falls back to the configured default.
func (e *Engine) CreateSession(chatID int64, p1, p2 string, level Level, maxQuestions int) (*Session, error) {
	p1 = strings.TrimSpace(p1)
	p2 = strings.TrimSpace(p2)
	if p1 == "" || p2 == "" {
		return nil, ErrSetupIncomplete
	}
	if maxQuestions <= 0 {
		maxQuestions = e.cfg.MaxQuestions
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sched.Disarm(chatID)
	s := e.store.CreateOrReplace(chatID, p1, p2, level, maxQuestions, e.cfg.SkipBudget)
	return s.clone(), nil
}

// IssueQuestion appends a pending question addressed to the current player
// and arms the answer-timeout reminder.
func (e *Engine) IssueQuestion(chatID int64, question string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if !s.SetupComplete() {
		return nil, ErrSetupIncomplete
	}
	if s.WaitingForAnswer {
		return nil, ErrQuestionPending
	}
	if s.Finished() {
		return nil, ErrSessionFinished
	}

	s.History = append(s.History, QAItem{
		Question:  question,
		Target:    s.CurrentPlayer(),
		Level:     s.Level,
		CreatedAt: time.Now(),
	})
	s.WaitingForAnswer = true
	s.PendingIndex = len(s.History) - 1
	s.QuestionsAsked++

	e.sched.Arm(chatID, s.PendingIndex, e.cfg.AnswerTimeout)
	return s.clone(), nil
}

// RecordAnswer attaches the answer to the pending question, applies the
// level auto-adjustment and flips the turn. Long answers are rejected
// without touching state: the same question stays pending and the timer
// stays armed.
func (e *Engine) RecordAnswer(chatID int64, raw string) (*AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if !s.WaitingForAnswer || s.PendingIndex < 0 {
		return nil, ErrNoQuestionPending
	}

	text := strings.TrimSpace(raw)
	if !IsShortAnswer(text) {
		return nil, ErrAnswerTooLong
	}
	if text == "" {
		// A non-text attachment stands in for a short answer.
		text = MediaAnswer
	}

	item := &s.History[s.PendingIndex]
	item.Answer = text
	s.WaitingForAnswer = false
	s.PendingIndex = -1
	e.sched.Disarm(chatID)

	oldLevel := s.Level
	normalized := strings.ToLower(text)
	switch {
	case strings.HasPrefix(normalized, "да"):
		if s.Level != levelOrder[len(levelOrder)-1] && e.chance.Roll(e.cfg.ProbUp) {
			s.Level = s.Level.Shifted(DirUp)
		}
	case strings.HasPrefix(normalized, "нет"):
		if s.Level != levelOrder[0] && e.chance.Roll(e.cfg.ProbDown) {
			s.Level = s.Level.Shifted(DirDown)
		}
	}

	s.Turn = 1 - s.Turn

	return &AnswerResult{
		Session:      s.clone(),
		Item:         *item,
		LevelChanged: s.Level != oldLevel,
		OldLevel:     oldLevel,
		NewLevel:     s.Level,
		Finished:     s.Finished(),
	}, nil
}

// RecordSkip spends one of the current player's skips on the pending
// question.
func (e *Engine) RecordSkip(chatID int64) (*AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if !s.WaitingForAnswer || s.PendingIndex < 0 {
		return nil, ErrNoQuestionPending
	}
	if s.SkipsLeft[s.Turn] <= 0 {
		return nil, ErrNoSkipsLeft
	}

	s.SkipsLeft[s.Turn]--
	item := &s.History[s.PendingIndex]
	item.Skipped = true
	item.Answer = SkipAnswer
	s.WaitingForAnswer = false
	s.PendingIndex = -1
	e.sched.Disarm(chatID)

	s.Turn = 1 - s.Turn

	return &AnswerResult{
		Session:  s.clone(),
		Item:     *item,
		OldLevel: s.Level,
		NewLevel: s.Level,
		Finished: s.Finished(),
	}, nil
}

// AdjustLevel moves the level one step in the given direction, saturating
// at the extremes. Turn and pending state are untouched.
func (e *Engine) AdjustLevel(chatID int64, dir Direction) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if s.Finished() {
		return nil, ErrSessionFinished
	}

	s.Level = s.Level.Shifted(dir)
	return s.clone(), nil
}

// Finish removes the session from the store and returns its final state
// for summary generation. Legal in any state.
func (e *Engine) Finish(chatID int64) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sched.Disarm(chatID)
	s, ok := e.store.Remove(chatID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// Session returns a detached snapshot of the chat's session.
func (e *Engine) Session(chatID int64) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

func (e *Engine) IsWaitingForAnswer(chatID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	return ok && s.WaitingForAnswer
}

func (e *Engine) CurrentPlayer(chatID int64) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || !s.SetupComplete() {
		return "", false
	}
	return s.CurrentPlayer(), true
}

// ActiveSessions returns detached snapshots of all live sessions.
func (e *Engine) ActiveSessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	out := make([]*Session, 0, len(e.store.sessions))
	for _, s := range e.store.sessions {
		out = append(out, s.clone())
	}
	return out
}

// onReminderFired re-checks that the question the timer was armed for is
// still pending; an answer racing the timeout makes this a silent no-op.
func (e *Engine) onReminderFired(chatID int64, pendingIndex int) {
	e.mu.Lock()
	s, ok := e.store.Get(chatID)
	if !ok || !s.WaitingForAnswer || s.PendingIndex != pendingIndex || e.remind == nil {
		e.mu.Unlock()
		return
	}
	item := s.History[pendingIndex]
	player := s.CurrentPlayer()
	fn := e.remind
	e.mu.Unlock()

	fn(chatID, item, player)
}

// IsShortAnswer accepts answers of at most three whitespace-delimited
// tokens. Empty input is valid: it stands for a media answer.
func IsShortAnswer(text string) bool {
	return len(strings.Fields(text)) <= 3
}
