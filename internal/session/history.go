// internal/session/history.go
package session

import "sync"

// Turn is one completed (query, reply) exchange.
type Turn struct {
	Query string
	Reply string
}

// History is a fixed-capacity ring buffer of conversation turns.
// Oldest turns are evicted first, which caps both memory and prompt size
// deterministically.
type History struct {
	turns []Turn
	head  int
	size  int
}

// NewHistory creates a history retaining at most capacity turns.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{turns: make([]Turn, capacity)}
}

// Append records a completed turn, evicting the oldest when full.
func (h *History) Append(t Turn) {
	idx := (h.head + h.size) % len(h.turns)
	h.turns[idx] = t
	if h.size < len(h.turns) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.turns)
	}
}

// Turns returns the retained turns, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.turns[(h.head+i)%len(h.turns)]
	}
	return out
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	return h.size
}

// Store hands out per-session conversation histories.
type Store interface {
	// Turns returns a snapshot of the session's history, oldest first.
	Turns(sessionID string) []Turn
	// Append records a completed turn for the session.
	Append(sessionID string, t Turn)
}

// MemoryStore is an in-process Store. Histories are created lazily on
// first use and never expire; the ring buffer bounds per-session memory.
type MemoryStore struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[string]*History
}

// NewMemoryStore creates a MemoryStore retaining maxTurns turns per session.
func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{
		maxTurns: maxTurns,
		sessions: make(map[string]*History),
	}
}

func (s *MemoryStore) Turns(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return h.Turns()
}

func (s *MemoryStore) Append(sessionID string, t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[sessionID]
	if !ok {
		h = NewHistory(s.maxTurns)
		s.sessions[sessionID] = h
	}
	h.Append(t)
}
