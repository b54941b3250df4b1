package profile

import (
	"container/list"
	"context"
	"maps"
	"sync"
)

// DefaultCapacity bounds the in-memory store when no capacity is given.
const DefaultCapacity = 10000

type memoryEntry struct {
	userID    string
	decisions map[string]string
}

// MemoryStore is an LRU-bounded in-memory Store. When the store reaches its
// capacity the least recently used profile is evicted, which keeps a
// long-running process from accumulating one entry per user ever seen.
type MemoryStore struct {
	capacity int
	items    map[string]*list.Element
	eviction *list.List
	mu       sync.Mutex
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCapacity overrides the eviction bound. Non-positive values are ignored.
func WithCapacity(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewMemoryStore creates an in-memory sticky-bucketing store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		capacity: DefaultCapacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns a copy of the stored profile and marks it recently used.
// Unknown users get an empty profile, not an error.
func (s *MemoryStore) Lookup(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[userID]
	if !ok {
		return NewProfile(userID), nil
	}
	s.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryEntry)

	return Profile{UserID: userID, Decisions: maps.Clone(entry.decisions)}, nil
}

// Save merges the profile's decisions into the stored entry.
func (s *MemoryStore) Save(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[p.UserID]; ok {
		s.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryEntry)
		maps.Copy(entry.decisions, p.Decisions)
		return nil
	}

	entry := &memoryEntry{userID: p.UserID, decisions: maps.Clone(p.Decisions)}
	if entry.decisions == nil {
		entry.decisions = make(map[string]string)
	}
	s.items[p.UserID] = s.eviction.PushFront(entry)

	if s.eviction.Len() > s.capacity {
		oldest := s.eviction.Back()
		if oldest != nil {
			s.eviction.Remove(oldest)
			delete(s.items, oldest.Value.(*memoryEntry).userID)
		}
	}
	return nil
}

// Len returns the number of stored profiles.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eviction.Len()
}
