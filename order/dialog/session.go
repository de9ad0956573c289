// Package dialog routes inbound conversation events to order operations.
// It owns the per-conversation edit state machine and is transport-agnostic:
// the Telegram adapter feeds it events and delivers the replies it produces.
package dialog

import "sync"

// Mode identifies the conversation state machine step.
type Mode string

const (
	// ModeIdle indicates no edit flow is in progress.
	ModeIdle Mode = "idle"
	// ModeAwaitingReplacement indicates the next text message fully replaces the order.
	ModeAwaitingReplacement Mode = "awaiting_replacement"
)

// sessions tracks conversation modes keyed by chat id. Modes live in memory
// only: a restart mid-edit falls back to idle.
type sessions struct {
	mu    sync.RWMutex
	modes map[int64]Mode
}

func newSessions() *sessions {
	return &sessions{modes: make(map[int64]Mode)}
}

// Get returns the mode for a conversation, defaulting to idle.
func (s *sessions) Get(chatID int64) Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mode, ok := s.modes[chatID]; ok {
		return mode
	}
	return ModeIdle
}

// Set updates the mode for a conversation.
func (s *sessions) Set(chatID int64, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == ModeIdle {
		delete(s.modes, chatID)
		return
	}
	s.modes[chatID] = mode
}
