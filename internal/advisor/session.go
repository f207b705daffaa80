package advisor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paisewise/paisewise/internal/memory"
)

// Session owns one conversation: its memory and the lock serializing
// queries against it. Memory is mutated only while the lock is held.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu  sync.Mutex
	mem *memory.Memory
}

// History returns the full conversation so far, oldest first.
func (s *Session) History() []memory.Turn {
	return s.mem.Snapshot()
}

// Reset discards the session's conversation history.
func (s *Session) Reset() {
	s.mem.Clear()
}

// Sessions tracks live sessions by ID. Safe for concurrent use.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Create registers a new session with a fresh UUID.
func (r *Sessions) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		mem:       memory.New(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session by ID.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (r *Sessions) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
