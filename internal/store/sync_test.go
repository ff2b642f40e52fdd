package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/channel"
	"github.com/playgenz/livescore/internal/engine"
	"github.com/playgenz/livescore/internal/notify"
	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/snapshot"
	"github.com/playgenz/livescore/internal/store"
	"github.com/playgenz/livescore/internal/testutil"
	"github.com/playgenz/livescore/pkg/models"
)

// engineStore opens a cricket store whose channel is answered by a real
// engine over an in-memory cache.
func engineStore(t *testing.T) (*fixture, *cache.Memory) {
	t.Helper()
	ctx := context.Background()
	tree, err := patch.FromValue(testutil.NewGenerator(11).Cricket("m1", models.FormatT20, 11))
	require.NoError(t, err)

	states := cache.NewMemory()
	require.NoError(t, states.Save(ctx, "m1", tree))
	eng := engine.New(states, nil, nil)

	f := &fixture{
		ch:      channel.NewMemory(eng.Responder()),
		notes:   &notify.Recorder{},
		initial: patch.Clone(tree),
		ctx:     ctx,
	}
	f.store = store.New("m1", store.Deps{
		Channel:  f.ch,
		Fetcher:  snapshot.Static{Tree: tree},
		Notifier: f.notes,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, f.store.Open(ctx))
	t.Cleanup(f.store.Close)
	return f, states
}

func serverScorecard(t *testing.T, states *cache.Memory) models.CricketScore {
	t.Helper()
	tree, err := states.Load(context.Background(), "m1")
	require.NoError(t, err)
	var sc models.CricketScore
	require.NoError(t, patch.Decode(tree, &sc))
	return sc
}

func TestAddedPlayerStaysInSyncWithEngine(t *testing.T) {
	f, states := engineStore(t)
	f.commit(t)

	late, err := f.store.AddPlayerToTeam(f.ctx, models.SideAway, models.Player{Name: "Late Arrival"})
	require.NoError(t, err)
	require.NoError(t, f.store.SelectBowler(f.ctx, 11))
	require.NoError(t, f.store.UpdateScore(f.ctx, 4, false, ""))

	for _, m := range f.notes.Messages() {
		assert.NotEqual(t, notify.LevelError, m.Level, m.Text)
	}

	server := serverScorecard(t, states)
	require.Len(t, server.Match.Away.Players, 12)
	require.NotNil(t, server.CurrentBowler)
	assert.Equal(t, late.ID, server.CurrentBowler.Player.ID)
	assert.Equal(t, 4, server.CurrentBowler.Runs)

	local, err := f.store.Scorecard()
	require.NoError(t, err)
	require.NotNil(t, local.CurrentBowler)
	assert.Equal(t, late.ID, local.CurrentBowler.Player.ID)
	assert.Equal(t, "Late Arrival", local.CurrentBowler.Player.Name)
	assert.Equal(t, 4, local.CurrentBowler.Runs)
	assert.Equal(t, 4, local.Score.Batting.Runs)
}

func TestAddPlayerForwardsOnlyCricketSquads(t *testing.T) {
	f := cricketStore(t)
	p, err := f.store.AddPlayerToTeam(f.ctx, models.SideHome, models.Player{Name: "Twelfth Man"})
	require.NoError(t, err)
	sent := f.ch.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, models.RouteAddPlayer, sent[0].Route)
	assert.Contains(t, string(sent[0].Payload), p.ID)

	u := openStore(t, testutil.NewGenerator(9).Universal("m1", models.SportHockey, 6))
	_, err = u.store.AddPlayerToTeam(u.ctx, models.SideHome, models.Player{Name: "Spare"})
	require.NoError(t, err)
	assert.Empty(t, u.ch.Sent(), "universal squads are scored locally")
}
