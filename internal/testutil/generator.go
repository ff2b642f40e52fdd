// Package testutil builds match fixtures for tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/playgenz/livescore/pkg/models"
)

// Generator creates rosters and matches from a seeded faker
type Generator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewGenerator creates a generator with an optional seed
func NewGenerator(seed ...int64) *Generator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &Generator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed in use, for failure messages
func (g *Generator) Seed() int64 {
	return g.seed
}

// Player creates a roster entry with a unique id
func (g *Generator) Player(prefix string, n int) models.Player {
	jersey := g.faker.Number(1, 99)
	return models.Player{
		ID:           fmt.Sprintf("%s-p%d", prefix, n),
		Name:         g.faker.Name(),
		JerseyNumber: &jersey,
		Position:     g.faker.RandomString([]string{"batter", "bowler", "all-rounder", "wicket-keeper"}),
	}
}

// Team creates a team of size players; the first player captains
func (g *Generator) Team(id string, size int) models.Team {
	t := models.Team{
		ID:   id,
		Name: g.faker.City() + " " + g.faker.Animal(),
		Logo: g.faker.URL(),
	}
	for i := 0; i < size; i++ {
		p := g.Player(id, i)
		p.IsCaptain = i == 0
		p.IsWicketKeeper = i == 1
		t.Players = append(t.Players, p)
	}
	return t
}

// Match creates an upcoming match between two teams of size players
func (g *Generator) Match(id string, sport models.SportType, size int) models.Match {
	return models.Match{
		ID:           id,
		TournamentID: "t-" + g.faker.LetterN(6),
		SportType:    sport,
		Home:         g.Team("home", size),
		Away:         g.Team("away", size),
		Venue:        g.faker.City() + " Oval",
		Date:         g.faker.FutureDate().UTC().Truncate(time.Second),
		Status:       models.StatusUpcoming,
	}
}

// Cricket creates a cricket scorecard awaiting the toss
func (g *Generator) Cricket(id string, format models.Format, size int) *models.CricketScore {
	return &models.CricketScore{
		Match:        g.Match(id, models.SportCricket, size),
		Format:       format,
		BattingOrder: map[string][]models.BattingCard{},
		BowlingStats: map[string][]models.BowlingCard{},
		RecentOvers:  []models.Over{},
	}
}

// Universal creates a universal scoreboard for a non-cricket sport
func (g *Generator) Universal(id string, sport models.SportType, size int) *models.UniversalScore {
	return &models.UniversalScore{
		Match:  g.Match(id, sport, size),
		Events: []models.MatchEvent{},
	}
}
