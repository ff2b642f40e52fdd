// Package cricket holds the cricket scoring rules shared by the scorecard
// store and the scoring engine. Every function mutates the scorecard it is
// given; rejected input comes back as one of the sentinel errors.
package cricket

import (
	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// roster returns the live roster of the team with the given id. Rosters are
// read from the match so players added mid-match are visible.
func roster(sc *models.CricketScore, teamID string) []models.Player {
	side, ok := sc.Match.SideOf(teamID)
	if !ok {
		return nil
	}
	return sc.Match.TeamBySide(side).Players
}

func findPlayer(players []models.Player, id string) (models.Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return models.Player{}, false
}

func battingIndex(cards []models.BattingCard, playerID string) int {
	for i, c := range cards {
		if c.Player.ID == playerID {
			return i
		}
	}
	return -1
}

func bowlingIndex(cards []models.BowlingCard, playerID string) int {
	for i, c := range cards {
		if c.Player.ID == playerID {
			return i
		}
	}
	return -1
}

// ensureCards seeds a batting order from the roster for teams that have none,
// and appends cards for players added to the roster since.
func ensureCards(sc *models.CricketScore, teamID string) {
	if sc.BattingOrder == nil {
		sc.BattingOrder = make(map[string][]models.BattingCard)
	}
	if sc.BowlingStats == nil {
		sc.BowlingStats = make(map[string][]models.BowlingCard)
	}
	cards := sc.BattingOrder[teamID]
	for _, p := range roster(sc, teamID) {
		if battingIndex(cards, p.ID) < 0 {
			cards = append(cards, models.BattingCard{Player: p})
		}
	}
	sc.BattingOrder[teamID] = cards
	if _, ok := sc.BowlingStats[teamID]; !ok {
		sc.BowlingStats[teamID] = []models.BowlingCard{}
	}
}

// ensureBowlingCard returns the index of the player's bowling card, creating it if needed
func ensureBowlingCard(sc *models.CricketScore, teamID string, p models.Player) int {
	if sc.BowlingStats == nil {
		sc.BowlingStats = make(map[string][]models.BowlingCard)
	}
	cards := sc.BowlingStats[teamID]
	if i := bowlingIndex(cards, p.ID); i >= 0 {
		return i
	}
	sc.BowlingStats[teamID] = append(cards, models.BowlingCard{Player: p})
	return len(cards)
}

// refreshSlots re-copies the current batters and bowler from their cards so
// the slots never show stale figures.
func refreshSlots(sc *models.CricketScore) {
	cards := sc.BattingOrder[sc.Score.Batting.Team.ID]
	if s := sc.CurrentBatsmen.Striker; s != nil {
		if i := battingIndex(cards, s.Player.ID); i >= 0 {
			c := cards[i]
			sc.CurrentBatsmen.Striker = &c
		}
	}
	if n := sc.CurrentBatsmen.NonStriker; n != nil {
		if i := battingIndex(cards, n.Player.ID); i >= 0 {
			c := cards[i]
			sc.CurrentBatsmen.NonStriker = &c
		}
	}
	if b := sc.CurrentBowler; b != nil {
		bowling := sc.BowlingStats[sc.Score.Bowling.Team.ID]
		if i := bowlingIndex(bowling, b.Player.ID); i >= 0 {
			c := bowling[i]
			sc.CurrentBowler = &c
		}
	}
	cricketmath.Derive(sc)
}

// countWickets returns the number of dismissed cards in a batting order
func countWickets(cards []models.BattingCard) int {
	n := 0
	for _, c := range cards {
		if c.Out() {
			n++
		}
	}
	return n
}

// wicketLimit is the number of wickets that ends an innings: one fewer than
// the batting roster, or ten when the roster is unknown.
func wicketLimit(sc *models.CricketScore) int {
	n := len(roster(sc, sc.Score.Batting.Team.ID))
	if n == 0 {
		return 10
	}
	if n < 2 {
		return 1
	}
	return n - 1
}

func isLive(sc *models.CricketScore) bool {
	return sc.Match.Toss != nil && sc.Match.Status == models.StatusLive
}
