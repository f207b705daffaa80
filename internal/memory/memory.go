// Package memory holds per-session conversation history: an append-only
// buffer of turns read back for prompt assembly. A turn is appended only
// after a query fully succeeds, so a failed query leaves history untouched.
package memory

import (
	"sync"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Memory is a thread-safe conversation buffer. The zero value is usable.
type Memory struct {
	mu    sync.RWMutex
	turns []Turn
}

// New returns an empty buffer.
func New() *Memory {
	return &Memory{}
}

// Append records turns in order, stamping any zero At with the current time.
func (m *Memory) Append(turns ...Turn) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range turns {
		if t.At.IsZero() {
			t.At = now
		}
		m.turns = append(m.turns, t)
	}
}

// Recent returns the last n turns, oldest first. n <= 0 returns nil.
func (m *Memory) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n > len(m.turns) {
		n = len(m.turns)
	}
	out := make([]Turn, n)
	copy(out, m.turns[len(m.turns)-n:])
	return out
}

// Snapshot returns a copy of the full history, oldest first.
func (m *Memory) Snapshot() []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len reports the number of recorded turns.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Clear discards all history.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}
