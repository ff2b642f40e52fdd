package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/cricket"
	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/testutil"
	"github.com/playgenz/livescore/pkg/models"
)

type fixture struct {
	engine *Engine
	states *cache.Memory
	match  models.Match
	seq    int
}

// newFixture seeds an eleven-a-side T20 awaiting the toss
func newFixture(t *testing.T) *fixture {
	t.Helper()
	sc := testutil.NewGenerator(11).Cricket("m1", models.FormatT20, 11)
	tree, err := patch.FromValue(sc)
	require.NoError(t, err)

	states := cache.NewMemory()
	require.NoError(t, states.Save(context.Background(), "m1", tree))
	return &fixture{engine: New(states, nil, nil), states: states, match: sc.Match}
}

func (f *fixture) intent(t *testing.T, route models.Route, payload any) models.Intent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	f.seq++
	return models.Intent{ID: fmt.Sprintf("i-%d", f.seq), MatchID: "m1", Route: route, Payload: data}
}

func (f *fixture) setup(t *testing.T) {
	t.Helper()
	in, err := cricket.SetupIntent(&f.match, cricket.SetupSelection{
		TossWinner:      models.SideHome,
		Decision:        models.DecisionBat,
		StrikerIndex:    0,
		NonStrikerIndex: 1,
		BowlerIndex:     10,
	})
	require.NoError(t, err)
	_, err = f.engine.Apply(context.Background(), f.intent(t, models.RouteMatchSetup, in))
	require.NoError(t, err)
}

func (f *fixture) scorecard(t *testing.T) models.CricketScore {
	t.Helper()
	tree, err := f.states.Load(context.Background(), "m1")
	require.NoError(t, err)
	var sc models.CricketScore
	require.NoError(t, patch.Decode(tree, &sc))
	return sc
}

func TestApplySetupStartsMatch(t *testing.T) {
	f := newFixture(t)
	f.setup(t)

	sc := f.scorecard(t)
	require.NotNil(t, sc.Match.Toss)
	assert.Equal(t, "home", sc.Match.Toss.Winner.ID)
	assert.Equal(t, models.StatusLive, sc.Match.Status)
	require.NotNil(t, sc.CurrentBatsmen.Striker)
	assert.Equal(t, "home-p0", sc.CurrentBatsmen.Striker.Player.ID)
	require.NotNil(t, sc.CurrentBowler)
	assert.Equal(t, "away-p10", sc.CurrentBowler.Player.ID)
}

func TestApplyDeliveryReturnsMinimalDelta(t *testing.T) {
	f := newFixture(t)
	f.setup(t)

	delta, err := f.engine.Apply(context.Background(),
		f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 4}))
	require.NoError(t, err)

	runs, ok := patch.Get(delta, "score", "batting", "runs")
	require.True(t, ok)
	assert.EqualValues(t, 4, runs)
	assert.NotContains(t, delta, "match", "the fixture did not change")

	sc := f.scorecard(t)
	assert.Equal(t, 4, sc.Score.Batting.Runs)
	assert.Equal(t, 4, sc.CurrentBatsmen.Striker.Runs)
	assert.Equal(t, 1, sc.CurrentBatsmen.Striker.Fours)
	assert.Equal(t, 0.1, sc.Score.Batting.Overs)
}

func TestApplyKeepsUnknownLeaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tree, err := f.states.Load(ctx, "m1")
	require.NoError(t, err)
	tree["broadcaster"] = map[string]any{"channel": "Sky"}
	require.NoError(t, f.states.Save(ctx, "m1", tree))

	f.setup(t)

	after, err := f.states.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Sky", patch.GetString(after, "broadcaster", "channel"))
}

func TestApplyRejections(t *testing.T) {
	tests := []struct {
		name  string
		live  bool
		build func(f *fixture, t *testing.T) models.Intent
		code  string
		is    error
	}{
		{
			name: "scoring before toss",
			build: func(f *fixture, t *testing.T) models.Intent {
				return f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 1})
			},
			code: CodeRuleViolation,
			is:   cricket.ErrMatchNotLive,
		},
		{
			name: "unknown route",
			live: true,
			build: func(f *fixture, t *testing.T) models.Intent {
				return f.intent(t, "declare", map[string]any{})
			},
			code: CodeUnknownRoute,
		},
		{
			name: "malformed payload",
			live: true,
			build: func(f *fixture, t *testing.T) models.Intent {
				return models.Intent{ID: "x", MatchID: "m1", Route: models.RouteScoreUpdate, Payload: []byte(`{"runs":"four"}`)}
			},
			code: CodeInvalidPayload,
		},
		{
			name: "too many runs",
			live: true,
			build: func(f *fixture, t *testing.T) models.Intent {
				return f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 9})
			},
			code: CodeRuleViolation,
			is:   cricket.ErrInvalidRuns,
		},
		{
			name: "second toss",
			live: true,
			build: func(f *fixture, t *testing.T) models.Intent {
				in, err := cricket.SetupIntent(&f.match, cricket.SetupSelection{
					TossWinner: models.SideAway, Decision: models.DecisionBat, StrikerIndex: 0, NonStrikerIndex: 1, BowlerIndex: 10,
				})
				require.NoError(t, err)
				return f.intent(t, models.RouteMatchSetup, in)
			},
			code: CodeRuleViolation,
			is:   cricket.ErrTossAlreadySet,
		},
		{
			name: "unknown match",
			build: func(f *fixture, t *testing.T) models.Intent {
				in := f.intent(t, models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 1})
				in.MatchID = "nope"
				return in
			},
			code: CodeMatchNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.live {
				f.setup(t)
			}
			before, err := f.states.Load(context.Background(), "m1")
			require.NoError(t, err)

			_, err = f.engine.Apply(context.Background(), tt.build(f, t))

			var rej *RejectError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.code, rej.Code)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}

			after, err := f.states.Load(context.Background(), "m1")
			require.NoError(t, err)
			assert.Equal(t, before, after, "a rejected intent leaves state untouched")
		})
	}
}

func TestApplyRejectsUniversalSports(t *testing.T) {
	us := testutil.NewGenerator(3).Universal("h1", models.SportHockey, 6)
	tree, err := patch.FromValue(us)
	require.NoError(t, err)
	states := cache.NewMemory()
	require.NoError(t, states.Save(context.Background(), "h1", tree))

	_, err = New(states, nil, nil).Apply(context.Background(), models.Intent{
		ID: "x", MatchID: "h1", Route: models.RouteScoreUpdate, Payload: []byte(`{"runs":1}`),
	})

	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CodeUnsupportedSport, rej.Code)
}

func TestDeltaFor(t *testing.T) {
	e := New(cache.NewMemory(), nil, nil)
	in := models.Intent{ID: "i1", MatchID: "m1"}

	ok := e.DeltaFor(in, patch.Tree{"lastWicket": "x"}, nil)
	assert.Equal(t, "m1", ok.MatchID)
	assert.Nil(t, ok.Error)
	assert.Equal(t, "x", ok.Patch["lastWicket"])

	rejected := e.DeltaFor(in, nil, reject(CodeRuleViolation, cricket.ErrNoBowler))
	require.NotNil(t, rejected.Error)
	assert.Equal(t, CodeRuleViolation, rejected.Error.Code)
	assert.Equal(t, "i1", rejected.Error.IntentID)
	assert.Equal(t, cricket.ErrNoBowler.Error(), rejected.Error.Message)

	failed := e.DeltaFor(in, nil, errors.New("redis down"))
	assert.Equal(t, CodeInternal, failed.Error.Code)
	assert.NotContains(t, failed.Error.Message, "redis")
}

func TestApplyAddPlayer(t *testing.T) {
	f := newFixture(t)
	late := models.AddPlayerIntent{Side: models.SideAway, Player: models.Player{ID: "away-late", Name: "Late Arrival"}}

	// squads may change before the toss
	delta, err := f.engine.Apply(context.Background(), f.intent(t, models.RouteAddPlayer, late))
	require.NoError(t, err)
	assert.Contains(t, delta, "match")
	require.Len(t, f.scorecard(t).Match.Away.Players, 12)

	_, err = f.engine.Apply(context.Background(), f.intent(t, models.RouteAddPlayer, late))
	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CodeRuleViolation, rej.Code)
	assert.ErrorIs(t, err, cricket.ErrDuplicatePlayer)

	f.setup(t)
	_, err = f.engine.Apply(context.Background(), f.intent(t, models.RouteSelectBowler, models.SelectBowlerIntent{BowlerIndex: 11}))
	require.NoError(t, err)
	sc := f.scorecard(t)
	require.NotNil(t, sc.CurrentBowler)
	assert.Equal(t, "away-late", sc.CurrentBowler.Player.ID)
}
