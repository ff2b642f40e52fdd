package store

import "github.com/playgenz/livescore/pkg/models"

// Operation names a store mutation
type Operation string

const (
	OpCommitSetup          Operation = "commitSetup"
	OpUpdateScore          Operation = "updateScore"
	OpAddExtras            Operation = "addExtras"
	OpDismissBatsman       Operation = "dismissBatsman"
	OpSelectBatsman        Operation = "selectBatsman"
	OpSelectBowler         Operation = "selectBowler"
	OpPauseMatch           Operation = "pauseMatch"
	OpUndo                 Operation = "undoLastAction"
	OpAddPlayerToTeam      Operation = "addPlayerToTeam"
	OpUpdateUniversalScore Operation = "updateUniversalScore"
	OpAddEvent             Operation = "addEvent"
)

// MutationClass says where an operation's effect is decided
type MutationClass string

const (
	// RemoteIntent operations are sent to the server and only take effect
	// when the canonical delta is pushed back.
	RemoteIntent MutationClass = "remoteIntent"
	// LocalTransition operations change the local scorecard immediately.
	LocalTransition MutationClass = "localTransition"
)

// Policy is the fixed handling of one operation
type Policy struct {
	Class MutationClass
	// Snapshot pushes the pre-mutation state onto the undo history
	Snapshot bool
	// Route is the channel route the operation is sent on, if any
	Route models.Route
}

var policies = map[Operation]Policy{
	OpUpdateScore:          {Class: RemoteIntent, Route: models.RouteScoreUpdate},
	OpAddExtras:            {Class: RemoteIntent, Route: models.RouteScoreUpdate},
	OpCommitSetup:          {Class: LocalTransition, Snapshot: true, Route: models.RouteMatchSetup},
	OpDismissBatsman:       {Class: LocalTransition, Snapshot: true, Route: models.RouteDismissal},
	OpSelectBatsman:        {Class: LocalTransition, Snapshot: true, Route: models.RouteSelectBatsman},
	OpSelectBowler:         {Class: LocalTransition, Snapshot: true, Route: models.RouteSelectBowler},
	OpPauseMatch:           {Class: LocalTransition},
	OpUndo:                 {Class: LocalTransition},
	OpAddPlayerToTeam:      {Class: LocalTransition, Route: models.RouteAddPlayer},
	OpUpdateUniversalScore: {Class: LocalTransition},
	OpAddEvent:             {Class: LocalTransition},
}

// PolicyOf returns the handling of op
func PolicyOf(op Operation) (Policy, bool) {
	p, ok := policies[op]
	return p, ok
}

// ClassOf returns the mutation class of op
func ClassOf(op Operation) MutationClass {
	return policies[op].Class
}

// Operations lists every store operation
func Operations() []Operation {
	return []Operation{
		OpCommitSetup, OpUpdateScore, OpAddExtras, OpDismissBatsman, OpSelectBatsman,
		OpSelectBowler, OpPauseMatch, OpUndo, OpAddPlayerToTeam, OpUpdateUniversalScore, OpAddEvent,
	}
}
