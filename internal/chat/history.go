// Package chat maintains the conversation and runs the query cycle.
package chat

import (
	"sync"

	"github.com/ananyev/adkchat/internal/domain"
)

// History is the append-only, in-memory list of chat turns for this process.
// Turns are never edited or removed; order is strictly insertion order.
type History struct {
	mu    sync.RWMutex
	turns []domain.ChatTurn
}

// NewHistory creates an empty chat history.
func NewHistory() *History {
	return &History{}
}

// Append adds a turn to the end of the history.
func (h *History) Append(turn domain.ChatTurn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
}

// Turns returns a copy of all turns in insertion order.
func (h *History) Turns() []domain.ChatTurn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.ChatTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}
