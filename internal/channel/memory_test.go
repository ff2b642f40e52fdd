package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

func TestMemoryRespondsThroughHandler(t *testing.T) {
	ch := NewMemory(func(_ context.Context, in models.Intent) (patch.Tree, *models.ErrorMessage) {
		if in.Route == models.RouteSelectBowler {
			return nil, &models.ErrorMessage{Code: "rejected", IntentID: in.ID}
		}
		return patch.Tree{"currentRunRate": 6.0}, nil
	})
	var updates []patch.Tree
	var rejects []models.ErrorMessage
	ch.OnUpdate(func(u patch.Tree) { updates = append(updates, u) })
	ch.OnReject(func(e models.ErrorMessage) { rejects = append(rejects, e) })

	assert.ErrorIs(t, ch.Send(context.Background(), models.RouteScoreUpdate, nil), ErrNotConnected)
	require.NoError(t, ch.Connect(context.Background(), "m1"))
	require.NoError(t, ch.Send(context.Background(), models.RouteScoreUpdate, models.ScoreUpdateIntent{Runs: 1}))
	require.NoError(t, ch.Send(context.Background(), models.RouteSelectBowler, models.SelectBowlerIntent{BowlerIndex: 1}))

	assert.Equal(t, []patch.Tree{{"currentRunRate": 6.0}}, updates)
	require.Len(t, rejects, 1)
	assert.Equal(t, "mem-2", rejects[0].IntentID)
	sent := ch.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "m1", sent[0].MatchID)
}
