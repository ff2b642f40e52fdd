package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/playgenz/livescore/internal/patch"
)

// Memory is an in-process cache for offline scoring and tests. Entries never expire.
type Memory struct {
	mu     sync.RWMutex
	states map[string]patch.Tree
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{states: make(map[string]patch.Tree)}
}

// Save stores a copy of state
func (m *Memory) Save(_ context.Context, matchID string, state patch.Tree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[matchID] = patch.Clone(state)
	return nil
}

// Load returns a copy of the stored state, or ErrNotFound
func (m *Memory) Load(_ context.Context, matchID string) (patch.Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	return patch.Clone(state), nil
}

// List returns the stored match ids in order
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
