package holdemtable

import (
	"time"

	"github.com/feltworks/holdemtable/holdem"
)

func (te *tableEngine) validateWagerTurn(playerID string) (int, error) {
	state := te.table.State

	if !state.Phase.IsBetting() {
		return UnsetValue, ErrTableInvalidPhase
	}

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return UnsetValue, ErrTablePlayerNotFound
	}
	if state.Seats[seatIdx].Status != SeatStatus_Active {
		return UnsetValue, ErrTableSeatNotInHand
	}
	if state.ActionOnSeat != seatIdx {
		return UnsetValue, ErrTableOutOfTurn
	}
	return seatIdx, nil
}

func (te *tableEngine) applyFold(seatIdx int) error {
	state := te.table.State
	seat := state.Seats[seatIdx]

	seat.Status = SeatStatus_Folded
	seat.LastWagerInterval = state.WagerIntervalID

	te.emitEvent("PlayerFold", seat.PlayerID)
	te.emitTableEvent(WagerAction_Fold, seatIdx, 0)
	te.continueBettingRound(seatIdx)
	return nil
}

func (te *tableEngine) applyCheck(seatIdx int) error {
	state := te.table.State
	seat := state.Seats[seatIdx]

	if state.Pot.CallAmount(seatIdx) != 0 {
		return ErrTableInvalidWager
	}
	seat.LastWagerInterval = state.WagerIntervalID

	te.emitEvent("PlayerCheck", seat.PlayerID)
	te.emitTableEvent(WagerAction_Check, seatIdx, 0)
	te.continueBettingRound(seatIdx)
	return nil
}

func (te *tableEngine) applyCall(seatIdx int) error {
	state := te.table.State
	seat := state.Seats[seatIdx]

	// a short stack calls for less and is all-in
	paid := te.payWager(seatIdx, state.Pot.CallAmount(seatIdx))
	seat.LastWagerInterval = state.WagerIntervalID

	te.emitEvent("PlayerCall", seat.PlayerID)
	te.emitTableEvent(WagerAction_Call, seatIdx, paid)
	te.continueBettingRound(seatIdx)
	return nil
}

// applyRaiseTo moves the seat's street commitment up to betTo. A raise below
// the minimum is only legal as an all-in, and such a short all-in does not
// reopen the action for seats that already acted this interval.
func (te *tableEngine) applyRaiseTo(seatIdx int, betTo int64) error {
	state := te.table.State
	meta := te.table.Meta
	seat := state.Seats[seatIdx]

	current := state.Pot.CurrentBets[seatIdx]
	delta := betTo - current
	if delta <= 0 {
		return ErrTableInvalidWager
	}
	if delta > seat.ChipStack {
		return ErrTableInsufficientChips
	}
	allIn := delta == seat.ChipStack

	if betTo <= state.BetToAmount {
		// at or below the current bet only an all-in call-for-less is legal
		if !allIn {
			return ErrTableInvalidWager
		}
		te.payWager(seatIdx, delta)
		seat.LastWagerInterval = state.WagerIntervalID

		te.emitEvent("PlayerAllIn", seat.PlayerID)
		te.emitTableEvent(WagerAction_AllIn, seatIdx, delta)
		te.continueBettingRound(seatIdx)
		return nil
	}

	if seat.LastWagerInterval == state.WagerIntervalID {
		return ErrTableActionNotReopened
	}

	if state.BetToAmount == 0 {
		// opening bet
		if betTo < meta.BB && !allIn {
			return ErrTableWagerTooSmall
		}
		if betTo >= meta.BB {
			state.MinRaiseAmount = betTo
			state.WagerIntervalID++
		}
	} else {
		raiseSize := betTo - state.BetToAmount
		if raiseSize < state.MinRaiseAmount && !allIn {
			return ErrTableWagerTooSmall
		}
		if raiseSize >= state.MinRaiseAmount {
			state.MinRaiseAmount = raiseSize
			state.WagerIntervalID++
		}
	}

	state.BetToAmount = betTo
	te.payWager(seatIdx, delta)
	seat.LastWagerInterval = state.WagerIntervalID

	action := WagerAction_Raise
	if allIn {
		action = WagerAction_AllIn
	}
	te.emitEvent("PlayerRaiseTo", seat.PlayerID)
	te.emitTableEvent(action, seatIdx, betTo)
	te.continueBettingRound(seatIdx)
	return nil
}

func (te *tableEngine) applyAllIn(seatIdx int) error {
	state := te.table.State
	seat := state.Seats[seatIdx]

	if seat.ChipStack <= 0 {
		return ErrTableInsufficientChips
	}

	betTo := state.Pot.CurrentBets[seatIdx] + seat.ChipStack
	if betTo > state.BetToAmount {
		return te.applyRaiseTo(seatIdx, betTo)
	}

	// call-for-less
	paid := te.payWager(seatIdx, seat.ChipStack)
	seat.LastWagerInterval = state.WagerIntervalID

	te.emitEvent("PlayerAllIn", seat.PlayerID)
	te.emitTableEvent(WagerAction_AllIn, seatIdx, paid)
	te.continueBettingRound(seatIdx)
	return nil
}

// applyStraddle posts a voluntary blind of twice the big blind from the seat
// left of it, before any other preflop action. The straddler keeps the option
// to act when the betting comes back around.
func (te *tableEngine) applyStraddle(seatIdx int) error {
	state := te.table.State
	meta := te.table.Meta
	seat := state.Seats[seatIdx]

	if state.Phase != TablePhase_Preflop || state.StraddleSeat != UnsetValue {
		return ErrTableStraddleNotAllowed
	}
	for _, idx := range te.table.InHandSeatIndexes() {
		if state.Seats[idx].LastWagerInterval != UnsetValue {
			return ErrTableStraddleNotAllowed
		}
	}

	amount := 2 * meta.BB
	need := amount - state.Pot.CurrentBets[seatIdx]
	if seat.ChipStack < need {
		return ErrTableInsufficientChips
	}

	te.payWager(seatIdx, need)
	state.BetToAmount = amount
	state.StraddleSeat = seatIdx
	// a blind post, not an action: the interval and the straddler's option
	// stay open

	te.emitEvent("PlayerStraddle", seat.PlayerID)
	te.emitTableEvent(WagerAction_Straddle, seatIdx, amount)
	te.continueBettingRound(seatIdx)
	return nil
}

// continueBettingRound moves the action to the next seat that still owes a
// decision, or closes the street when nobody does. A lone unfolded seat wins
// outright.
func (te *tableEngine) continueBettingRound(anchor int) {
	state := te.table.State

	if te.table.countNotFolded() == 1 {
		te.settleFoldWin()
		return
	}
	if te.streetComplete() {
		te.endStreet()
		return
	}

	next := te.nextActionSeat(anchor)
	if next == UnsetValue {
		te.endStreet()
		return
	}
	state.ActionOnSeat = next
	te.resetActionDeadline()
}

// streetComplete holds when every active seat matched the street's bet and
// acted in the current wager interval. All-in and folded seats are settled by
// definition. A lone active seat with its bet matched has nobody left to bet
// against, so the interval requirement only binds while two or more seats can
// still act; that is what runs the board out after an all-in confrontation.
func (te *tableEngine) streetComplete() bool {
	state := te.table.State
	active := te.table.countActive()
	for idx, s := range state.Seats {
		if s == nil || s.Status != SeatStatus_Active {
			continue
		}
		if state.Pot.CurrentBets[idx] != state.BetToAmount {
			return false
		}
		if active >= 2 && s.LastWagerInterval != state.WagerIntervalID {
			return false
		}
	}
	return true
}

func (te *tableEngine) nextActionSeat(anchor int) int {
	state := te.table.State
	n := te.table.Meta.MaxSeatCount
	active := te.table.countActive()

	if anchor == UnsetValue {
		anchor = n - 1
	}
	for i := 1; i <= n; i++ {
		idx := (anchor + i) % n
		s := state.Seats[idx]
		if s == nil || s.Status != SeatStatus_Active {
			continue
		}
		if state.Pot.CurrentBets[idx] != state.BetToAmount {
			return idx
		}
		if active >= 2 && s.LastWagerInterval != state.WagerIntervalID {
			return idx
		}
	}
	return UnsetValue
}

// endStreet returns any uncalled excess, sweeps the street bets into the pot
// and either deals the next street or goes to showdown.
func (te *tableEngine) endStreet() {
	state := te.table.State

	if seatIdx, amount := state.Pot.ReturnUncalled(); seatIdx != UnsetValue {
		state.Seats[seatIdx].ChipStack += amount
		te.emitTableEvent(TableEvent_UncalledBetReturned, seatIdx, amount)
	}
	state.Pot.CollectBets()

	state.BetToAmount = 0
	state.MinRaiseAmount = te.table.Meta.BB
	state.WagerIntervalID = 0
	state.ActionOnSeat = UnsetValue
	state.ActionDeadline = UnsetValue
	for _, idx := range te.table.InHandSeatIndexes() {
		state.Seats[idx].LastWagerInterval = UnsetValue
	}

	switch state.Phase {
	case TablePhase_Preflop:
		state.Phase = TablePhase_Flop
		te.dealCommunity(3)
	case TablePhase_Flop:
		state.Phase = TablePhase_Turn
		te.dealCommunity(1)
	case TablePhase_Turn:
		state.Phase = TablePhase_River
		te.dealCommunity(1)
	case TablePhase_River:
		te.settleShowdown()
		return
	}

	te.emitEvent("NextStreet", "")
	te.emitTableEvent(TableEvent_PhaseAdvanced, UnsetValue, 0)
	te.continueBettingRound(state.DealerSeat)
}

// payWager moves chips from the seat's stack into its live street bet,
// clamped to the stack. An emptied stack puts the seat all-in.
func (te *tableEngine) payWager(seatIdx int, amount int64) int64 {
	state := te.table.State
	seat := state.Seats[seatIdx]

	if amount > seat.ChipStack {
		amount = seat.ChipStack
	}
	if amount <= 0 {
		return 0
	}
	seat.ChipStack -= amount
	state.Pot.AddBet(seatIdx, amount)
	if seat.ChipStack == 0 {
		seat.Status = SeatStatus_AllIn
	}
	return amount
}

// payDead moves chips straight into the pot with no live bet to match: antes
// and owed blinds.
func (te *tableEngine) payDead(seatIdx int, amount int64) int64 {
	state := te.table.State
	seat := state.Seats[seatIdx]

	if amount > seat.ChipStack {
		amount = seat.ChipStack
	}
	if amount <= 0 {
		return 0
	}
	seat.ChipStack -= amount
	state.Pot.AddDeadBet(seatIdx, amount)
	if seat.ChipStack == 0 {
		seat.Status = SeatStatus_AllIn
	}
	return amount
}

func (te *tableEngine) postBlind(seatIdx int, amount int64) {
	paid := te.payWager(seatIdx, amount)
	te.emitTableEvent(TableEvent_BlindPosted, seatIdx, paid)
}

func (te *tableEngine) resetActionDeadline() {
	state := te.table.State
	meta := te.table.Meta

	state.ActionDeadline = te.now() + int64(meta.ActionTimeout)

	if te.options != nil && !te.options.AutoScheduleTimeouts {
		return
	}
	te.tb.Cancel()
	if err := te.tb.NewTask(time.Duration(meta.ActionTimeout)*time.Second, func(isCancelled bool) {
		if isCancelled {
			return
		}
		if err := te.HandleTimeout(); err != nil {
			te.emitErrorEvent("auto action timeout", "", err)
		}
	}); err != nil {
		te.emitErrorEvent("schedule action timeout", "", err)
	}
}

func (te *tableEngine) draw() holdem.Card {
	card := te.deck[te.deckCursor]
	te.deckCursor++
	return card
}

func (te *tableEngine) dealCommunity(count int) {
	state := te.table.State
	for i := 0; i < count; i++ {
		state.CommunityCards = append(state.CommunityCards, te.draw())
	}
}

// leaveSeat cashes the stack back to the ledger and frees the seat.
func (te *tableEngine) leaveSeat(seatIdx int) error {
	state := te.table.State
	seat := state.Seats[seatIdx]

	if seat.ChipStack > 0 {
		if err := te.ledger.Credit(seat.PlayerID, seat.ChipStack); err != nil {
			return err
		}
	}
	te.emitTableEvent(TableEvent_PlayerLeft, seatIdx, seat.ChipStack)
	state.Seats[seatIdx] = nil
	return nil
}
