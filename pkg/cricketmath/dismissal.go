package cricketmath

import (
	"fmt"

	"github.com/playgenz/livescore/pkg/models"
)

// DismissalDescription renders the scorecard notation for a dismissal
// caught, bowler "A", fielder "B" → "c B b A"
// runOut, fielder "C" → "run out (C)"
// Types without a notation render as their raw token.
func DismissalDescription(kind models.DismissalType, bowler, fielder string) string {
	switch kind {
	case models.DismissalBowled:
		return fmt.Sprintf("b %s", bowler)
	case models.DismissalCaught:
		return fmt.Sprintf("c %s b %s", fielder, bowler)
	case models.DismissalLBW:
		return fmt.Sprintf("lbw b %s", bowler)
	case models.DismissalStumped:
		return fmt.Sprintf("st %s b %s", fielder, bowler)
	case models.DismissalRunOut:
		return fmt.Sprintf("run out (%s)", fielder)
	case models.DismissalHitWicket:
		return fmt.Sprintf("hit wicket b %s", bowler)
	}
	return string(kind)
}

// LastWicketSummary renders the fall-of-wicket line shown under the score
// "Rohit Sharma c B b A 45(30)"
func LastWicketSummary(card models.BattingCard) string {
	desc := ""
	if card.Dismissal != nil {
		desc = card.Dismissal.Description
	}
	return fmt.Sprintf("%s %s %d(%d)", card.Player.Name, desc, card.Runs, card.Balls)
}
