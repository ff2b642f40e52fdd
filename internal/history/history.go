// Package history keeps the undo stack of full scorecard snapshots.
package history

import (
	"sync"

	"github.com/playgenz/livescore/internal/patch"
)

// DefaultCapacity bounds the stack when no capacity is given
const DefaultCapacity = 50

// Stack is a bounded LIFO of deep-copied state trees. When full, the oldest
// snapshot is discarded.
type Stack struct {
	mu        sync.Mutex
	snapshots []patch.Tree
	capacity  int
}

// New creates a stack holding at most capacity snapshots
func New(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack{
		snapshots: make([]patch.Tree, 0, capacity),
		capacity:  capacity,
	}
}

// Push stores an independent copy of state
func (s *Stack) Push(state patch.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) == s.capacity {
		copy(s.snapshots, s.snapshots[1:])
		s.snapshots = s.snapshots[:len(s.snapshots)-1]
	}
	s.snapshots = append(s.snapshots, patch.Clone(state))
}

// Pop removes and returns the most recent snapshot. ok is false when empty.
func (s *Stack) Pop() (state patch.Tree, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.snapshots)
	if n == 0 {
		return nil, false
	}
	state = s.snapshots[n-1]
	s.snapshots[n-1] = nil
	s.snapshots = s.snapshots[:n-1]
	return state, true
}

// Len returns the number of stored snapshots
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// Reset drops every snapshot
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = s.snapshots[:0]
}
