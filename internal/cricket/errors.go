package cricket

import "errors"

// Validation errors. Each leaves the scorecard unchanged.
var (
	ErrTossAlreadySet   = errors.New("toss has already been recorded")
	ErrUnknownTeam      = errors.New("team is not part of this match")
	ErrInvalidDecision  = errors.New("toss decision must be bat or bowl")
	ErrSetupMismatch    = errors.New("batting team does not follow from the toss")
	ErrInvalidIndex     = errors.New("player index out of range")
	ErrUnknownPlayer    = errors.New("player is not on the team roster")
	ErrSamePlayer       = errors.New("striker and non-striker must be different players")
	ErrPlayerDismissed  = errors.New("player is already out")
	ErrDuplicateBatsman = errors.New("player is already batting in the other slot")
	ErrAlreadyDismissed = errors.New("batter has already been dismissed")
	ErrInvalidDismissal = errors.New("unknown dismissal type")
	ErrMatchNotLive     = errors.New("match is not live")
	ErrNoStriker        = errors.New("no striker selected")
	ErrNoBowler         = errors.New("no bowler selected")
	ErrInvalidRuns      = errors.New("runs must be between 0 and 7")
	ErrInvalidExtra     = errors.New("unknown extra type")
	ErrInvalidSide      = errors.New("team must be home or away")
	ErrInvalidPlayer    = errors.New("player needs an id and a name")
	ErrDuplicatePlayer  = errors.New("player is already on the roster")
)
