package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/channel"
	"github.com/playgenz/livescore/internal/config"
	"github.com/playgenz/livescore/internal/engine"
	"github.com/playgenz/livescore/internal/notify"
	"github.com/playgenz/livescore/internal/registry"
	"github.com/playgenz/livescore/internal/snapshot"
	"github.com/playgenz/livescore/internal/store"
	"github.com/playgenz/livescore/internal/testutil"
	"github.com/playgenz/livescore/pkg/models"
)

type fixtureOptions struct {
	Sport   string
	Format  string
	Players int
	Seed    int64
}

// onlineDeps talks to a relay over HTTP and WebSocket
func onlineDeps(matchID string, cfg *config.Config, out io.Writer, logger *slog.Logger) store.Deps {
	return store.Deps{
		Channel:    channel.NewWebSocket(cfg.Client.RelayURL, nil, logger),
		Fetcher:    snapshot.NewHTTPFetcher(cfg.Client.APIURL, nil),
		Notifier:   notifier(cfg, matchID, out, logger),
		Logger:     logger,
		HistoryCap: cfg.Client.HistoryCapacity,
	}
}

// offlineDeps seeds a generated fixture and answers intents with an in-process engine
func offlineDeps(ctx context.Context, matchID string, opts fixtureOptions, cfg *config.Config, out io.Writer, logger *slog.Logger) (store.Deps, error) {
	sport := models.SportType(strings.ToLower(opts.Sport))
	var seed []int64
	if opts.Seed != 0 {
		seed = append(seed, opts.Seed)
	}
	match := testutil.NewGenerator(seed...).Match(matchID, sport, opts.Players)

	tree, err := registry.New().Seed(match, registry.SeedOptions{Format: models.Format(opts.Format)})
	if err != nil {
		return store.Deps{}, fmt.Errorf("failed to seed offline match: %w", err)
	}

	states := cache.NewMemory()
	if err := states.Save(ctx, matchID, tree); err != nil {
		return store.Deps{}, err
	}
	eng := engine.New(states, nil, logger)

	return store.Deps{
		Channel:    channel.NewMemory(eng.Responder()),
		Fetcher:    snapshot.Static{Tree: tree},
		Notifier:   notifier(cfg, matchID, out, logger),
		Logger:     logger,
		HistoryCap: cfg.Client.HistoryCapacity,
	}, nil
}

// notifier prints toasts to out and the log and, when configured, posts them to a webhook
func notifier(cfg *config.Config, matchID string, out io.Writer, logger *slog.Logger) notify.Notifier {
	n := notify.Multi{printer{w: out}, notify.NewLogNotifier(logger)}
	if cfg.Client.WebhookURL != "" {
		n = append(n, notify.NewWebhookNotifier(cfg.Client.WebhookURL, matchID, cfg.Client.WebhookPerMin, logger))
	}
	return n
}
