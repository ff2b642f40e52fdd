package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/store"
	"github.com/playgenz/livescore/internal/testutil"
	"github.com/playgenz/livescore/pkg/models"
)

func TestUniversalScoreClampsAtZero(t *testing.T) {
	f := openStore(t, testutil.NewGenerator(4).Universal("m1", models.SportFootball, 11))
	assert.Equal(t, models.SportFootball, f.store.Sport())
	assert.Equal(t, store.StepLive, f.store.Step())

	score, err := f.store.UpdateUniversalScore(models.SideHome, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	score, err = f.store.UpdateUniversalScore(models.SideHome, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	score, err = f.store.UpdateUniversalScore(models.SideAway, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	us, err := f.store.UniversalScore()
	require.NoError(t, err)
	assert.Equal(t, models.SideScores{Home: 0, Away: 1}, us.Scores)

	_, err = f.store.UpdateUniversalScore("middle", 1)
	assert.ErrorIs(t, err, store.ErrInvalidSide)
	assert.Empty(t, f.ch.Sent(), "universal scoring stays local")
}

func TestAddEvent(t *testing.T) {
	f := openStore(t, testutil.NewGenerator(4).Universal("m1", models.SportBasketball, 5))

	ev, err := f.store.AddEvent("timeout", models.SideAway, "", "full timeout")
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)

	_, err = f.store.AddEvent("foul", models.SideHome, "home-p3", "")
	require.NoError(t, err)

	_, err = f.store.AddEvent("  ", models.SideHome, "", "")
	assert.ErrorIs(t, err, store.ErrInvalidEvent)

	us, err := f.store.UniversalScore()
	require.NoError(t, err)
	require.Len(t, us.Events, 2)
	assert.Equal(t, "timeout", us.Events[0].Type)
	assert.Equal(t, models.SideAway, us.Events[0].Team)
	assert.Equal(t, "home-p3", us.Events[1].Player)
}

func TestSportGuards(t *testing.T) {
	football := openStore(t, testutil.NewGenerator(4).Universal("m1", models.SportFootball, 11))
	assert.ErrorIs(t, football.store.SelectTossWinner(models.SideHome), store.ErrWrongSport)
	assert.ErrorIs(t, football.store.UpdateScore(football.ctx, 1, false, ""), store.ErrWrongSport)
	_, err := football.store.Scorecard()
	assert.ErrorIs(t, err, store.ErrWrongSport)

	cricket := cricketStore(t)
	_, err = cricket.store.UpdateUniversalScore(models.SideHome, 1)
	assert.ErrorIs(t, err, store.ErrWrongSport)
	_, err = cricket.store.UniversalScore()
	assert.ErrorIs(t, err, store.ErrWrongSport)
}

func TestAddPlayerToTeam(t *testing.T) {
	for _, sport := range []models.SportType{models.SportCricket, models.SportHockey} {
		t.Run(string(sport), func(t *testing.T) {
			g := testutil.NewGenerator(9)
			var f *fixture
			if sport == models.SportCricket {
				f = openStore(t, g.Cricket("m1", models.FormatODI, 11))
			} else {
				f = openStore(t, g.Universal("m1", sport, 6))
			}

			p, err := f.store.AddPlayerToTeam(f.ctx, models.SideAway, models.Player{Name: "  Sam Curran "})
			require.NoError(t, err)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, "Sam Curran", p.Name)

			_, err = f.store.AddPlayerToTeam(f.ctx, models.SideAway, p)
			assert.ErrorIs(t, err, store.ErrDuplicatePlayer)
			_, err = f.store.AddPlayerToTeam(f.ctx, models.SideHome, models.Player{})
			assert.ErrorIs(t, err, store.ErrInvalidPlayer)

			var m struct {
				Match models.Match `json:"match"`
			}
			require.NoError(t, decodeState(f, &m))
			players := m.Match.Away.Players
			assert.Equal(t, p, players[len(players)-1])
			assert.False(t, f.store.CanUndo(), "roster changes are not undoable")
		})
	}
}

func TestNewPlayerCanBeSelected(t *testing.T) {
	f := cricketStore(t)
	f.commit(t)

	_, err := f.store.AddPlayerToTeam(f.ctx, models.SideAway, models.Player{Name: "Late Arrival"})
	require.NoError(t, err)
	require.NoError(t, f.store.SelectBowler(f.ctx, 11))

	sc, err := f.store.Scorecard()
	require.NoError(t, err)
	assert.Equal(t, "Late Arrival", sc.CurrentBowler.Player.Name)
}
