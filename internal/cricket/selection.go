package cricket

import "github.com/playgenz/livescore/pkg/models"

// SelectBatsman puts the batting card at index into the striker or
// non-striker slot. The index is into the batting team's batting order.
func SelectBatsman(sc *models.CricketScore, index int, asStriker bool) error {
	teamID := sc.Score.Batting.Team.ID
	ensureCards(sc, teamID)
	cards := sc.BattingOrder[teamID]
	if !inRange(cards, index) {
		return ErrInvalidIndex
	}
	card := cards[index]
	if card.Out() {
		return ErrPlayerDismissed
	}

	other := sc.CurrentBatsmen.NonStriker
	if !asStriker {
		other = sc.CurrentBatsmen.Striker
	}
	if other != nil && other.Player.ID == card.Player.ID {
		return ErrDuplicateBatsman
	}

	if asStriker {
		sc.CurrentBatsmen.Striker = &card
	} else {
		sc.CurrentBatsmen.NonStriker = &card
	}
	refreshSlots(sc)
	return nil
}

// SelectBowler makes the bowling team's roster player at index the current
// bowler, opening a bowling card on first use.
func SelectBowler(sc *models.CricketScore, index int) error {
	teamID := sc.Score.Bowling.Team.ID
	players := roster(sc, teamID)
	if !inRange(players, index) {
		return ErrInvalidIndex
	}
	i := ensureBowlingCard(sc, teamID, players[index])
	card := sc.BowlingStats[teamID][i]
	sc.CurrentBowler = &card
	refreshSlots(sc)
	return nil
}
