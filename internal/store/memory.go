package store

import (
	"context"
	"sync"

	"github.com/curatist/curatist/internal/types"
)

// MemoryStore is an in-memory Store used by tests and dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*types.Item // key: platform + ":" + platform_id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*types.Item)}
}

func (s *MemoryStore) Upsert(_ context.Context, items []*types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		cp := *item
		s.items[item.Key()] = &cp
	}
	return nil
}

func (s *MemoryStore) FetchByPlatformIDs(_ context.Context, platform types.Platform, ids []string) ([]*types.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.Item
	for _, id := range ids {
		if item, ok := s.items[string(platform)+":"+id]; ok {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ExistingIDs(_ context.Context, platform types.Platform, ids []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.items[string(platform)+":"+id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, platform types.Platform, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, string(platform)+":"+id)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// Get returns a stored item by key, or nil. Test helper.
func (s *MemoryStore) Get(platform types.Platform, id string) *types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[string(platform)+":"+id]; ok {
		cp := *item
		return &cp
	}
	return nil
}

// Len returns the number of stored rows. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
