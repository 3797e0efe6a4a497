package telegram

import (
	"sync"

	"github.com/hromoibes/love-game-telegram/internal/game"
)

// Setup flow states, keyed by chat: the couple shares one conversation.
const (
	StateNone       = ""
	StateEnterName1 = "enter_name1"
	StateEnterName2 = "enter_name2"
	StatePickLevel  = "pick_level"
	StatePickLength = "pick_length"
)

type SetupState struct {
	State   string
	Player1 string
	Player2 string
	Level   game.Level
}

type StateManager struct {
	mu    sync.RWMutex
	chats map[int64]*SetupState
}

func NewStateManager() *StateManager {
	return &StateManager{
		chats: make(map[int64]*SetupState),
	}
}

func (m *StateManager) Get(chatID int64) *SetupState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.chats[chatID]
	if !ok {
		return &SetupState{}
	}
	cp := *s
	return &cp
}

func (m *StateManager) Set(chatID int64, state *SetupState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[chatID] = state
}

func (m *StateManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
}

func (m *StateManager) UpdateField(chatID int64, fn func(s *SetupState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.chats[chatID]
	if !ok {
		s = &SetupState{}
		m.chats[chatID] = s
	}
	fn(s)
}
