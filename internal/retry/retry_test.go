package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSucceedsAfterFailures(t *testing.T) {
	p := NewRetryPolicy(3, time.Millisecond)
	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteGivesUp(t *testing.T) {
	boom := errors.New("boom")
	p := NewRetryPolicy(2, time.Millisecond)
	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestExecutePermanentStopsImmediately(t *testing.T) {
	notFound := errors.New("not found")
	p := NewRetryPolicy(5, time.Millisecond)
	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return Permanent(notFound)
	})
	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewRetryPolicy(5, time.Hour)
	err := p.Execute(ctx, func(context.Context) error {
		cancel()
		return errors.New("down")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled after 1 attempts")
}
