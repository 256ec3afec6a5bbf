package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps carts in process memory. Used in tests and as the
// fallback when no Redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]Item
	notifier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Item)}
}

func (s *MemoryStore) Items(ctx context.Context, sessionID string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.carts[sessionID]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func (s *MemoryStore) Add(ctx context.Context, sessionID string, item Item) {
	s.mu.Lock()
	s.carts[sessionID] = mergeItem(s.carts[sessionID], item)
	s.mu.Unlock()
	s.notify(sessionID)
}

func (s *MemoryStore) Remove(ctx context.Context, sessionID, key string) {
	s.mu.Lock()
	s.carts[sessionID] = removeItem(s.carts[sessionID], key)
	s.mu.Unlock()
	s.notify(sessionID)
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	s.notify(sessionID)
}

func (s *MemoryStore) Subscribe(fn func(sessionID string)) func() {
	return s.subscribe(fn)
}
