package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/playgenz/livescore/internal/store"
	"github.com/playgenz/livescore/pkg/models"
)

// usageError is a malformed console command. Store failures are already
// reported through the notifier and are not printed again.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usage(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

var errQuit = errors.New("quit")

type command struct {
	args string
	help string
	run  func(c *console, ctx context.Context, args []string) error
}

// console drives a store from line-oriented scorer commands
type console struct {
	store    *store.Store
	out      io.Writer
	commands map[string]command
}

func newConsole(s *store.Store, out io.Writer) *console {
	c := &console{store: s, out: out}
	c.commands = map[string]command{
		"help":    {help: "list commands", run: (*console).help},
		"show":    {help: "print the scorecard", run: (*console).show},
		"toss":    {args: "home|away", help: "record the toss winner", run: (*console).toss},
		"decide":  {args: "bat|bowl", help: "record the toss decision", run: (*console).decide},
		"openers": {args: "STRIKER NON_STRIKER", help: "pick the opening batters by roster index", run: (*console).openers},
		"opener":  {args: "BOWLER", help: "pick the opening bowler by roster index", run: (*console).opener},
		"commit":  {help: "start the match with the setup selections", run: (*console).commit},
		"runs":    {args: "N", help: "score a ball", run: (*console).runs},
		"extra":   {args: "wide|noBall|bye|legBye|penalty [N]", help: "score an extra", run: (*console).extra},
		"out":     {args: "BATTER KIND [BOWLER] [FIELDER]", help: "dismiss a batter by batting order index", run: (*console).dismiss},
		"batsman": {args: "INDEX [striker]", help: "send in a batter", run: (*console).batsman},
		"bowler":  {args: "INDEX", help: "change the bowler", run: (*console).bowler},
		"pause":   {help: "pause scoring", run: func(c *console, _ context.Context, _ []string) error { c.store.PauseMatch(true); return nil }},
		"resume":  {help: "resume scoring", run: func(c *console, _ context.Context, _ []string) error { c.store.PauseMatch(false); return nil }},
		"undo":    {help: "undo the last local change", run: (*console).undo},
		"player":  {args: "home|away NAME", help: "add a player to a squad", run: (*console).player},
		"point":   {args: "home|away [DELTA]", help: "adjust a universal score", run: (*console).point},
		"event":   {args: "TYPE home|away [PLAYER] [DESCRIPTION]", help: "log a match event", run: (*console).event},
		"quit":    {help: "leave the console", run: func(*console, context.Context, []string) error { return errQuit }},
	}
	return c
}

// run reads commands until EOF, quit or ctx is cancelled
func (c *console) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, render(c.store))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				var ue usageError
				if errors.As(err, &ue) {
					fmt.Fprintln(c.out, ue.msg)
				}
			}
		}
	}
}

// exec runs one command line
func (c *console) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := c.commands[name]
	if !ok {
		return usage("unknown command %q, try help", fields[0])
	}
	return cmd.run(c, ctx, fields[1:])
}

func (c *console) help(context.Context, []string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := c.commands[name]
		fmt.Fprintf(c.out, "  %-8s %-38s %s\n", name, cmd.args, cmd.help)
	}
	return nil
}

func (c *console) show(context.Context, []string) error {
	fmt.Fprintln(c.out, render(c.store))
	return nil
}

func (c *console) toss(_ context.Context, args []string) error {
	side, err := sideArg(args, 0)
	if err != nil {
		return err
	}
	return c.store.SelectTossWinner(side)
}

func (c *console) decide(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("usage: decide bat|bowl")
	}
	return c.store.SelectTossDecision(models.TossDecision(strings.ToLower(args[0])))
}

func (c *console) openers(_ context.Context, args []string) error {
	striker, err := intArg(args, 0, "striker")
	if err != nil {
		return err
	}
	nonStriker, err := intArg(args, 1, "non-striker")
	if err != nil {
		return err
	}
	return c.store.SelectOpeningBatsmen(striker, nonStriker)
}

func (c *console) opener(_ context.Context, args []string) error {
	idx, err := intArg(args, 0, "bowler")
	if err != nil {
		return err
	}
	return c.store.SelectOpeningBowler(idx)
}

func (c *console) commit(ctx context.Context, _ []string) error {
	if err := c.store.CommitSetup(ctx); err != nil {
		return err
	}
	return c.show(ctx, nil)
}

func (c *console) runs(ctx context.Context, args []string) error {
	n, err := intArg(args, 0, "runs")
	if err != nil {
		return err
	}
	return c.store.UpdateScore(ctx, n, false, "")
}

func (c *console) extra(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("usage: extra wide|noBall|bye|legBye|penalty [N]")
	}
	kind, ok := extraTypes[strings.ToLower(args[0])]
	if !ok {
		return usage("unknown extra %q", args[0])
	}
	n := 0
	if len(args) > 1 {
		var err error
		if n, err = intArg(args, 1, "runs"); err != nil {
			return err
		}
	}
	return c.store.AddExtras(ctx, kind, n)
}

var extraTypes = map[string]models.ExtraType{
	"wide":    models.ExtraWide,
	"wd":      models.ExtraWide,
	"noball":  models.ExtraNoBall,
	"nb":      models.ExtraNoBall,
	"bye":     models.ExtraBye,
	"b":       models.ExtraBye,
	"legbye":  models.ExtraLegBye,
	"lb":      models.ExtraLegBye,
	"penalty": models.ExtraPenalty,
}

func (c *console) dismiss(ctx context.Context, args []string) error {
	batter, err := intArg(args, 0, "batter")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage("usage: out BATTER KIND [BOWLER] [FIELDER]")
	}
	bowler, fielder := models.NoPlayer, models.NoPlayer
	if len(args) > 2 {
		if bowler, err = intArg(args, 2, "bowler"); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		if fielder, err = intArg(args, 3, "fielder"); err != nil {
			return err
		}
	}
	return c.store.DismissBatsman(ctx, batter, models.DismissalType(args[1]), bowler, fielder)
}

func (c *console) batsman(ctx context.Context, args []string) error {
	idx, err := intArg(args, 0, "batter")
	if err != nil {
		return err
	}
	asStriker := len(args) > 1 && strings.EqualFold(args[1], "striker")
	return c.store.SelectBatsman(ctx, idx, asStriker)
}

func (c *console) bowler(ctx context.Context, args []string) error {
	idx, err := intArg(args, 0, "bowler")
	if err != nil {
		return err
	}
	return c.store.SelectBowler(ctx, idx)
}

func (c *console) undo(ctx context.Context, _ []string) error {
	if c.store.UndoLastAction() {
		return c.show(ctx, nil)
	}
	return nil
}

func (c *console) player(ctx context.Context, args []string) error {
	side, err := sideArg(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage("usage: player home|away NAME")
	}
	_, err = c.store.AddPlayerToTeam(ctx, side, models.Player{Name: strings.Join(args[1:], " ")})
	return err
}

func (c *console) point(_ context.Context, args []string) error {
	side, err := sideArg(args, 0)
	if err != nil {
		return err
	}
	delta := 1
	if len(args) > 1 {
		if delta, err = intArg(args, 1, "delta"); err != nil {
			return err
		}
	}
	_, err = c.store.UpdateUniversalScore(side, delta)
	return err
}

func (c *console) event(_ context.Context, args []string) error {
	if len(args) < 2 {
		return usage("usage: event TYPE home|away [PLAYER] [DESCRIPTION]")
	}
	side, err := sideArg(args, 1)
	if err != nil {
		return err
	}
	var player, description string
	if len(args) > 2 {
		player = args[2]
	}
	if len(args) > 3 {
		description = strings.Join(args[3:], " ")
	}
	_, err = c.store.AddEvent(args[0], side, player, description)
	return err
}

func sideArg(args []string, i int) (models.Side, error) {
	if i >= len(args) {
		return "", usage("missing team, expected home or away")
	}
	side := models.Side(strings.ToLower(args[i]))
	if !side.Valid() {
		return "", usage("team must be home or away, got %q", args[i])
	}
	return side, nil
}

func intArg(args []string, i int, name string) (int, error) {
	if i >= len(args) {
		return 0, usage("missing %s", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, usage("%s must be a number, got %q", name, args[i])
	}
	return n, nil
}
