package snapshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/retry"
)

func TestHTTPFetcher(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch r.URL.Path {
		case "/api/v1/matches/m1/scorecard":
			if n == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"format":"T20","score":{"batting":{"runs":42}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/", retry.NewRetryPolicy(3, time.Millisecond))

	tree, err := f.Fetch(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "T20", patch.GetString(tree, "format"))
	runs, _ := patch.Get(tree, "score", "batting", "runs")
	assert.Equal(t, float64(42), runs)
	assert.Equal(t, int32(2), calls.Load(), "a 503 is retried")

	calls.Store(0)
	_, err = f.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "a 404 is not retried")
}

func TestStaticReturnsCopies(t *testing.T) {
	s := Static{Tree: patch.Tree{"score": patch.Tree{"runs": 1.0}}}
	a, err := s.Fetch(context.Background(), "m1")
	require.NoError(t, err)
	a["score"].(patch.Tree)["runs"] = 99.0

	b, _ := s.Fetch(context.Background(), "m1")
	runs, _ := patch.Get(b, "score", "runs")
	assert.Equal(t, 1.0, runs)
}
