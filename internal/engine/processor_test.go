package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/consumer"
	"github.com/playgenz/livescore/internal/dedup"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	deltas []models.Delta
	err    error
}

func (p *recordingPublisher) PublishDelta(_ context.Context, d models.Delta) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.deltas = append(p.deltas, d)
	return nil
}

func (p *recordingPublisher) published() []models.Delta {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Delta(nil), p.deltas...)
}

type fakeSource struct {
	messages chan consumer.Message
	mu       sync.Mutex
	acked    []string
}

func (s *fakeSource) ConsumeStream(context.Context, string) (<-chan consumer.Message, <-chan error) {
	return s.messages, make(chan error)
}

func (s *fakeSource) AckMessage(_ context.Context, _, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, id)
	return nil
}

func (s *fakeSource) ackedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}

// failingStore loads like its wrapped store but cannot save
type failingStore struct{ StateStore }

func (failingStore) Save(context.Context, string, patch.Tree) error {
	return errors.New("connection refused")
}

func message(t *testing.T, id string, in models.Intent) consumer.Message {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	return consumer.Message{ID: id, StreamKey: "scorecard.intents", Data: data}
}

func TestProcessorHandle(t *testing.T) {
	f := newFixture(t)
	f.setup(t)
	pub := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	p := NewProcessor(nil, "scorecard.intents", f.engine, pub, dedup.NewMemory(0), m, nil)
	ctx := context.Background()

	four := f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 4})
	assert.Equal(t, metrics.OutcomeApplied, p.Handle(ctx, message(t, "1-0", four)))
	assert.Equal(t, metrics.OutcomeDuplicate, p.Handle(ctx, message(t, "1-1", four)), "redelivered intent")

	bad := f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 12})
	assert.Equal(t, metrics.OutcomeRejected, p.Handle(ctx, message(t, "1-2", bad)))

	deltas := pub.published()
	require.Len(t, deltas, 2)
	assert.Nil(t, deltas[0].Error)
	assert.NotEmpty(t, deltas[0].Patch)
	require.NotNil(t, deltas[1].Error)
	assert.Equal(t, bad.ID, deltas[1].Error.IntentID)
	assert.Equal(t, CodeRuleViolation, deltas[1].Error.Code)

	assert.Equal(t, 4, f.scorecard(t).Score.Batting.Runs, "the duplicate was not applied twice")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntentsProcessed.WithLabelValues("scoreUpdate", metrics.OutcomeDuplicate)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DeltasPublished))
}

func TestProcessorHandleUndecodable(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}
	p := NewProcessor(nil, "scorecard.intents", f.engine, pub, nil, nil, nil)

	outcome := p.Handle(context.Background(), consumer.Message{ID: "1-0", Data: []byte("{")})
	assert.Equal(t, metrics.OutcomeRejected, outcome)
	assert.Empty(t, pub.published())
}

func TestProcessorFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.setup(t)
	broken := New(failingStore{f.states}, nil, nil)
	d := dedup.NewMemory(0)
	pub := &recordingPublisher{}
	p := NewProcessor(nil, "scorecard.intents", broken, pub, d, nil, nil)
	ctx := context.Background()

	in := f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 1})
	assert.Equal(t, metrics.OutcomeFailed, p.Handle(ctx, message(t, "1-0", in)))

	deltas := pub.published()
	require.Len(t, deltas, 1)
	assert.Equal(t, CodeInternal, deltas[0].Error.Code)

	first, err := d.FirstSeen(ctx, in.ID)
	require.NoError(t, err)
	assert.True(t, first, "a failed intent is forgotten so a retry is applied")
}

func TestProcessorPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.setup(t)
	pub := &recordingPublisher{err: errors.New("stream unavailable")}
	p := NewProcessor(nil, "scorecard.intents", f.engine, pub, nil, nil, nil)

	in := f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 2})
	assert.Equal(t, metrics.OutcomeFailed, p.Handle(context.Background(), message(t, "1-0", in)))
}

func TestProcessorStartAcksEveryMessage(t *testing.T) {
	f := newFixture(t)
	f.setup(t)
	src := &fakeSource{messages: make(chan consumer.Message, 2)}
	pub := &recordingPublisher{}
	p := NewProcessor(src, "scorecard.intents", f.engine, pub, nil, nil, nil)

	src.messages <- message(t, "1-0", f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 1}))
	src.messages <- message(t, "1-1", f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 99}))
	close(src.messages)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Start(ctx))

	assert.Equal(t, []string{"1-0", "1-1"}, src.ackedIDs())
	assert.Len(t, pub.published(), 2)
}
