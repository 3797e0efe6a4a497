package game

import (
	"sync"
	"time"
)

// Store keeps live sessions in memory, one per chat. Sessions do not
// survive a restart; finished games are archived separately.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
	}
}

// StartSetup creates a placeholder session for the chat, discarding any
// previous one regardless of its state.
func (st *Store) StartSetup(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := &Session{
		ChatID:       chatID,
		Level:        LevelLight,
		PendingIndex: -1,
		CreatedAt:    time.Now(),
	}
	st.sessions[chatID] = s
	return s
}

// CreateOrReplace installs a fully set-up session for the chat. Any prior
// session for the same chat is dropped without ceremony.
func (st *Store) CreateOrReplace(chatID int64, p1, p2 string, level Level, maxQuestions, skipBudget int) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := &Session{
		ChatID:       chatID,
		Players:      [2]string{p1, p2},
		Level:        level,
		SkipsLeft:    [2]int{skipBudget, skipBudget},
		PendingIndex: -1,
		MaxQuestions: maxQuestions,
		CreatedAt:    time.Now(),
	}
	st.sessions[chatID] = s
	return s
}

func (st *Store) Get(chatID int64) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[chatID]
	return s, ok
}

// Remove detaches and returns the session, so the caller can build a
// summary from the final state.
func (st *Store) Remove(chatID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[chatID]
	if ok {
		delete(st.sessions, chatID)
	}
	return s, ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
