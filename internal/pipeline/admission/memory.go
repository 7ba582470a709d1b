// internal/pipeline/admission/memory.go
package admission

import (
	"context"
	"sync"
	"time"
)

const memoryShards = 32

type window struct {
	start time.Time
	count int64
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// MemoryStore is an in-process fixed-window store. Keys are spread over
// independent shards so contention on one sender never blocks another.
// The injected clock must be monotonic; time.Now qualifies because the
// window arithmetic runs on the monotonic reading.
type MemoryStore struct {
	shards [memoryShards]*shard
	now    func() time.Time
}

// NewMemoryStore creates a MemoryStore. A nil clock defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	s := &MemoryStore{now: now}
	for i := range s.shards {
		s.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return s
}

func (s *MemoryStore) Incr(ctx context.Context, key string, windowLen time.Duration) (int64, time.Duration, error) {
	sh := s.shards[fnv32(key)%memoryShards]

	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := s.now()
	w, ok := sh.windows[key]
	if !ok || now.Sub(w.start) >= windowLen {
		w = &window{start: now, count: 0}
		sh.windows[key] = w
	}
	w.count++

	remaining := windowLen - now.Sub(w.start)
	return w.count, remaining, nil
}

func fnv32(s string) uint32 {
	const prime = 16777619
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
