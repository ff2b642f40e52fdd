package registry

import (
	"fmt"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// minCricketSquad is the fewest players that can open an innings
const minCricketSquad = 2

// Cricket seeds ball-by-ball cricket scorecards
type Cricket struct{}

func (Cricket) Sport() models.SportType { return models.SportCricket }
func (Cricket) DisplayName() string     { return "Cricket" }

// ValidateMatch requires at least two players per squad
func (Cricket) ValidateMatch(match *models.Match) error {
	for _, team := range []models.Team{match.Home, match.Away} {
		if len(team.Players) < minCricketSquad {
			return fmt.Errorf("%w: %s needs at least %d players", ErrInvalidMatch, team.ID, minCricketSquad)
		}
	}
	return nil
}

// NewScorecard builds a cricket scorecard awaiting the toss
func (Cricket) NewScorecard(match models.Match, opts SeedOptions) (patch.Tree, error) {
	format := opts.Format
	if format == "" {
		format = models.FormatT20
	}
	if format != models.FormatT20 && format != models.FormatODI && format != models.FormatTest {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidMatch, format)
	}
	_, innings := cricketmath.FormatLimits(format)

	sc := models.CricketScore{
		Match:          match,
		Format:         format,
		CurrentInnings: 1,
		TotalInnings:   innings,
		BattingOrder:   map[string][]models.BattingCard{},
		BowlingStats:   map[string][]models.BowlingCard{},
		RecentOvers:    []models.Over{},
	}
	return patch.FromValue(sc)
}

// Universal seeds score-counter scorecards for every non-cricket sport
type Universal struct {
	SportType models.SportType
	Name      string
	Periods   int
	Label     func(period, periods int) string
}

func (u Universal) Sport() models.SportType { return u.SportType }
func (u Universal) DisplayName() string     { return u.Name }

func (u Universal) ValidateMatch(*models.Match) error { return nil }

// NewScorecard builds a zeroed scoreboard in the first period
func (u Universal) NewScorecard(match models.Match, _ SeedOptions) (patch.Tree, error) {
	us := models.UniversalScore{
		Match:  match,
		Period: 1,
		Events: []models.MatchEvent{},
	}
	if u.Label != nil {
		us.PeriodLabel = u.Label(1, u.Periods)
	}
	return patch.FromValue(us)
}

func halfLabel(period, _ int) string {
	switch period {
	case 1:
		return "1st half"
	case 2:
		return "2nd half"
	}
	return fmt.Sprintf("ET%d", period-2)
}

func prefixLabel(prefix string) func(int, int) string {
	return func(period, _ int) string {
		return fmt.Sprintf("%s%d", prefix, period)
	}
}
