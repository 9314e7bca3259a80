package cache

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory Store. It is the default cache
// for an AuthenticationContext and is suitable for sharing across
// contexts within one process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]*Item
}

// NewMemoryStore creates an empty in-memory token cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[Key]*Item),
	}
}

// Lookup returns copies of every entry matching the key, most recently
// written first.
func (s *MemoryStore) Lookup(key Key) []*Item {
	want := key.Normalized()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Item
	for k, item := range s.items {
		if k.Authority != want.Authority || k.ClientID != want.ClientID {
			continue
		}
		if want.Resource != "" && k.Resource != want.Resource {
			continue
		}
		if want.UserID != "" && k.UserID != want.UserID {
			continue
		}
		matches = append(matches, item.Clone())
	}

	sort.Slice(matches, func(a, b int) bool {
		return matches[a].StoredAt.After(matches[b].StoredAt)
	})

	return matches
}

// Write stores a copy of the item, overwriting any entry with the same
// normalized key.
func (s *MemoryStore) Write(item *Item) error {
	clone := item.Clone()
	if clone.StoredAt.IsZero() {
		clone.StoredAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[clone.Key()] = clone
	return nil
}

// Remove deletes the entry with the exact normalized key.
func (s *MemoryStore) Remove(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key.Normalized())
	return nil
}

// Count returns the number of entries in the store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[Key]*Item)
}
