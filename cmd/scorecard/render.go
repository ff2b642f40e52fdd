package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/playgenz/livescore/internal/store"
	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

var (
	headlineStyle = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printer writes toasts to the terminal
type printer struct {
	w io.Writer
}

func (p printer) Success(msg string) { fmt.Fprintln(p.w, successStyle.Render("✓ "+msg)) }
func (p printer) Error(msg string)   { fmt.Fprintln(p.w, errorStyle.Render("✗ "+msg)) }
func (p printer) Info(msg string)    { fmt.Fprintln(p.w, mutedStyle.Render("• "+msg)) }

// render formats the store's current scorecard
func render(s *store.Store) string {
	if s.Sport() == models.SportCricket {
		sc, err := s.Scorecard()
		if err != nil {
			return "scorecard unavailable: " + err.Error()
		}
		if s.Step() != store.StepLive {
			return fmt.Sprintf("%s vs %s, awaiting setup (%s)", sc.Match.Home.Name, sc.Match.Away.Name, s.Step())
		}
		return renderCricket(sc)
	}
	us, err := s.UniversalScore()
	if err != nil {
		return "scorecard unavailable: " + err.Error()
	}
	return renderUniversal(us)
}

func renderCricket(sc *models.CricketScore) string {
	var b strings.Builder
	bat := sc.Score.Batting
	b.WriteString(headlineStyle.Render(fmt.Sprintf("%s %d/%d (%s ov)", bat.Team.Name, bat.Runs, bat.Wickets,
		cricketmath.FormatOvers(bat.Overs))))
	fmt.Fprintf(&b, "  CRR %.2f", sc.CurrentRunRate)
	if sc.Target != nil {
		remaining := cricketmath.OversRemaining(sc.Format, bat.Overs)
		fmt.Fprintf(&b, "  target %d, RRR %.2f", *sc.Target,
			cricketmath.RequiredRunRate(*sc.Target, bat.Runs, remaining))
	}
	fmt.Fprintf(&b, "  extras %d\n", bat.Extras.Total())

	for _, slot := range []struct {
		card *models.BattingCard
		mark string
	}{{sc.CurrentBatsmen.Striker, "*"}, {sc.CurrentBatsmen.NonStriker, " "}} {
		if slot.card == nil {
			fmt.Fprintf(&b, "  %s -\n", slot.mark)
			continue
		}
		c := slot.card
		fmt.Fprintf(&b, "  %s %s %d (%d)  4s %d 6s %d  SR %.2f\n", slot.mark, c.Player.Name, c.Runs, c.Balls, c.Fours, c.Sixes, c.StrikeRate)
	}
	if bw := sc.CurrentBowler; bw != nil {
		fmt.Fprintf(&b, "  bowling %s %s-%d-%d-%d  econ %.2f\n", bw.Player.Name,
			cricketmath.FormatOvers(bw.Overs), bw.Maidens, bw.Runs, bw.Wickets, bw.Economy)
	}
	if sc.LastWicket != "" {
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("last wicket: "+sc.LastWicket))
	}
	if n := len(sc.RecentOvers); n > 0 {
		fmt.Fprintf(&b, "  this over: %s\n", overSummary(sc.RecentOvers[n-1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func overSummary(o models.Over) string {
	balls := make([]string, 0, len(o.Deliveries))
	for _, d := range o.Deliveries {
		switch {
		case d.IsWicket:
			balls = append(balls, "W")
		case d.IsExtra:
			balls = append(balls, fmt.Sprintf("%d%s", d.Runs, extraMark(d.ExtraType)))
		default:
			balls = append(balls, fmt.Sprint(d.Runs))
		}
	}
	return strings.Join(balls, " ")
}

func extraMark(t models.ExtraType) string {
	switch t {
	case models.ExtraWide:
		return "wd"
	case models.ExtraNoBall:
		return "nb"
	case models.ExtraBye:
		return "b"
	case models.ExtraLegBye:
		return "lb"
	}
	return "p"
}

func renderUniversal(us *models.UniversalScore) string {
	line := headlineStyle.Render(fmt.Sprintf("%s %d - %d %s", us.Match.Home.Name, us.Scores.Home, us.Scores.Away, us.Match.Away.Name))
	if us.PeriodLabel != "" {
		line += " (" + us.PeriodLabel + ")"
	}
	if n := len(us.Events); n > 0 {
		e := us.Events[n-1]
		line += fmt.Sprintf("\n  latest: %s %s %s", e.Type, e.Team, e.Player)
	}
	return line
}

// watch prints the scorecard whenever it changes until ctx is cancelled
func watch(ctx context.Context, s *store.Store, interval time.Duration, out io.Writer) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := render(s)
	fmt.Fprintln(out, last)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if cur := render(s); cur != last {
				fmt.Fprintln(out, cur)
				last = cur
			}
		}
	}
}
