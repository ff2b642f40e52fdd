package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/playgenz/livescore/internal/config"
	"github.com/playgenz/livescore/internal/store"
)

func main() {
	cliApp := &cli.App{
		Name:  "scorecard",
		Usage: "score or follow a live match",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the YAML config file"},
			&cli.BoolFlag{Name: "verbose", Usage: "log debug output to stderr"},
		},
		Commands: []*cli.Command{
			newWatchCommand(),
			newScoreCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "follow a match and print the scorecard as it changes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "match", Required: true, Usage: "match id"},
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "how often to check for changes"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			s := store.New(c.String("match"), onlineDeps(c.String("match"), cfg, c.App.Writer, logger))
			if err := s.Open(c.Context); err != nil {
				return err
			}
			defer s.Close()
			return watch(c.Context, s, c.Duration("interval"), c.App.Writer)
		},
	}
}

func newScoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "score a match from the terminal",
		Description: "Reads scorer commands from stdin, one per line. Type 'help' for the list.\n" +
			"With --offline the match is seeded and scored in process without a relay.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "match", Required: true, Usage: "match id"},
			&cli.BoolFlag{Name: "offline", Usage: "score against an in-process engine"},
			&cli.StringFlag{Name: "sport", Value: "cricket", Usage: "sport of the offline fixture"},
			&cli.StringFlag{Name: "format", Value: "T20", Usage: "cricket format of the offline fixture"},
			&cli.IntFlag{Name: "players", Value: 11, Usage: "squad size of the offline fixture"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for the offline fixture rosters"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}

			deps := onlineDeps(c.String("match"), cfg, c.App.Writer, logger)
			if c.Bool("offline") {
				deps, err = offlineDeps(c.Context, c.String("match"), fixtureOptions{
					Sport:   c.String("sport"),
					Format:  c.String("format"),
					Players: c.Int("players"),
					Seed:    c.Int64("seed"),
				}, cfg, c.App.Writer, logger)
				if err != nil {
					return err
				}
			}

			s := store.New(c.String("match"), deps)
			if err := s.Open(c.Context); err != nil {
				return err
			}
			defer s.Close()

			con := newConsole(s, c.App.Writer)
			return con.run(c.Context, os.Stdin)
		},
	}
}

// setup loads config and builds the console logger
func setup(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}
