package holdemtable

const (
	// General
	UnsetValue = -1

	// MaxSeatCount is the largest table this engine deals.
	MaxSeatCount = 5

	// Wager Action
	WagerAction_Fold     = "fold"
	WagerAction_Check    = "check"
	WagerAction_Call     = "call"
	WagerAction_Raise    = "raise"
	WagerAction_AllIn    = "allin"
	WagerAction_Straddle = "straddle"
)
