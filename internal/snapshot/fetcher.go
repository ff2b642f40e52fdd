// Package snapshot loads the canonical scorecard of a match over HTTP.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/retry"
)

// ErrNotFound is returned when the server has no scorecard for the match
var ErrNotFound = errors.New("match scorecard not found")

// Fetcher loads the full canonical state of a match
type Fetcher interface {
	Fetch(ctx context.Context, matchID string) (patch.Tree, error)
}

// HTTPFetcher fetches scorecards from the relay API
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	retry      *retry.RetryPolicy
	userAgent  string
}

// NewHTTPFetcher creates a fetcher for the API rooted at baseURL
func NewHTTPFetcher(baseURL string, policy *retry.RetryPolicy) *HTTPFetcher {
	if policy == nil {
		policy = retry.NewRetryPolicy(3, 500*time.Millisecond)
	}
	return &HTTPFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		retry:     policy,
		userAgent: "livescore-scorecard/1.0",
	}
}

// Fetch GETs {base}/api/v1/matches/{id}/scorecard
func (f *HTTPFetcher) Fetch(ctx context.Context, matchID string) (patch.Tree, error) {
	endpoint := fmt.Sprintf("%s/api/v1/matches/%s/scorecard", f.baseURL, url.PathEscape(matchID))

	var result patch.Tree
	err := f.retry.Execute(ctx, func(ctx context.Context) error {
		tree, err := f.fetch(ctx, endpoint)
		if err != nil {
			return err
		}
		result = tree
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fetch makes an HTTP GET request and returns the parsed tree
func (f *HTTPFetcher) fetch(ctx context.Context, endpoint string) (patch.Tree, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Permanent(ErrNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, retry.Permanent(fmt.Errorf("scorecard API error: status=%d, body=%s", resp.StatusCode, string(body)))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("scorecard API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var tree patch.Tree
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil, retry.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return tree, nil
}

// Static serves a fixed tree, for offline scoring and tests
type Static struct {
	Tree patch.Tree
	Err  error
}

// Fetch returns a copy of the fixed tree, or Err when set
func (s Static) Fetch(context.Context, string) (patch.Tree, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return patch.Clone(s.Tree), nil
}
