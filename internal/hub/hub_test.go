package hub

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/client"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/pkg/models"
)

func runHub(t *testing.T) (*Hub, *metrics.Metrics, context.CancelFunc) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	h := NewHub(m, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, m, cancel
}

func TestRegisterAndUnregister(t *testing.T) {
	h, m, _ := runHub(t)
	a := client.NewClient("a", "m1", nil, h, client.Options{})
	b := client.NewClient("b", "m1", nil, h, client.Options{})
	c := client.NewClient("c", "m2", nil, h, client.Options{})

	h.Register(a)
	h.Register(b)
	h.Register(c)
	require.Eventually(t, func() bool { return h.GetClientCount() == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, h.ViewerCount("m1"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WatchedMatches))

	h.Unregister(a)
	h.Unregister(a)
	_, open := <-a.Send
	assert.False(t, open, "unregister closes the send queue once")
	assert.Equal(t, 1, h.ViewerCount("m1"))

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ViewerCount("m2") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WatchedMatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections))
}

func TestBroadcastIsMatchScoped(t *testing.T) {
	h, _, _ := runHub(t)
	a := client.NewClient("a", "m1", nil, h, client.Options{})
	b := client.NewClient("b", "m2", nil, h, client.Options{})
	h.Register(a)
	h.Register(b)
	require.Eventually(t, func() bool { return h.GetClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(models.Delta{MatchID: "m1", Patch: map[string]interface{}{"lastWicket": "x"}})

	select {
	case msg := <-a.Send:
		assert.Equal(t, models.MessageTypeDelta, msg.Type)
		assert.Equal(t, "m1", msg.MatchID)
	case <-time.After(2 * time.Second):
		t.Fatal("delta not delivered")
	}
	assert.Empty(t, b.Send)
}

func TestShutdownReleasesCallers(t *testing.T) {
	h, _, cancel := runHub(t)
	a := client.NewClient("a", "m1", nil, h, client.Options{})
	h.Register(a)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case <-h.done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	// neither call blocks once the hub has stopped
	h.Unregister(a)
	h.Register(client.NewClient("b", "m1", nil, h, client.Options{}))
}
