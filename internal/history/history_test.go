package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/patch"
)

func TestStack_UndoRoundTrip(t *testing.T) {
	s := New(10)
	state := patch.Tree{"score": patch.Tree{"runs": 0.0}}
	original := patch.Clone(state)

	// three snapshot-taking mutations
	for i := 1; i <= 3; i++ {
		s.Push(state)
		state = patch.Apply(state, patch.Tree{"score": patch.Tree{"runs": float64(i)}})
	}

	for i := 0; i < 3; i++ {
		var ok bool
		state, ok = s.Pop()
		require.True(t, ok)
	}

	if diff := cmp.Diff(original, state); diff != "" {
		t.Errorf("undo round trip mismatch (-want +got):\n%s", diff)
	}
	_, ok := s.Pop()
	assert.False(t, ok, "stack should be empty")
}

func TestStack_SnapshotsAreIndependent(t *testing.T) {
	s := New(2)
	state := patch.Tree{"score": patch.Tree{"runs": 1.0}}
	s.Push(state)

	state["score"].(patch.Tree)["runs"] = 99.0

	got, ok := s.Pop()
	require.True(t, ok)
	runs, _ := patch.Get(got, "score", "runs")
	assert.Equal(t, 1.0, runs)
}

func TestStack_DropsOldestWhenFull(t *testing.T) {
	s := New(2)
	s.Push(patch.Tree{"n": 1.0})
	s.Push(patch.Tree{"n": 2.0})
	s.Push(patch.Tree{"n": 3.0})

	assert.Equal(t, 2, s.Len())
	top, _ := s.Pop()
	next, _ := s.Pop()
	assert.Equal(t, 3.0, top["n"])
	assert.Equal(t, 2.0, next["n"])
	assert.Equal(t, 0, s.Len())
}

func TestStack_DefaultCapacityAndReset(t *testing.T) {
	s := New(0)
	for i := 0; i < DefaultCapacity+5; i++ {
		s.Push(patch.Tree{"n": float64(i)})
	}
	assert.Equal(t, DefaultCapacity, s.Len())

	s.Reset()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Pop()
	assert.False(t, ok)
}
