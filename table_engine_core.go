package holdemtable

import (
	"github.com/weedbox/syncsaga"

	"github.com/feltworks/holdemtable/dealer"
	"github.com/feltworks/holdemtable/holdem"
	"github.com/feltworks/holdemtable/pot"
)

/*
StartHand 開始新的一手
  - 適用時機: 桌次等待中且至少兩位可參與玩家
  - 進入承諾階段, 參與座位須在期限內提交洗牌承諾
*/
func (te *tableEngine) StartHand() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	state := te.table.State
	if state.Phase != TablePhase_Waiting {
		return ErrTableInvalidPhase
	}

	eligible := te.table.NextHandSeatIndexes()
	if len(eligible) < 2 {
		return ErrTableNotEnoughPlayers
	}

	if state.StartAt == UnsetValue {
		state.StartAt = te.now()
	}
	state.HandNumber++

	// rotate the button among this hand's participants
	state.DealerSeat = findSeatAfter(state.Seats, state.DealerSeat, func(s *SeatState) bool {
		return !s.SittingOut && s.ChipStack > 0
	})

	for _, idx := range eligible {
		seat := state.Seats[idx]
		seat.Status = SeatStatus_Active
		seat.LastWagerInterval = UnsetValue
		seat.Commitment = nil
		seat.RevealedSecret = nil
		seat.EncryptedHoleCards = nil
	}

	state.Phase = TablePhase_Commit
	state.CommitDeadline = te.now() + int64(te.table.Meta.CommitTimeout)
	state.RevealDeadline = UnsetValue
	state.ActionDeadline = UnsetValue
	state.CommunityCards = nil
	state.StraddleSeat = UnsetValue

	te.armReadyGroup(eligible, te.table.Meta.CommitTimeout)

	te.emitEvent("StartHand", "")
	te.emitTableEvent(TableEvent_HandStarted, state.DealerSeat, 0)
	return nil
}

/*
SubmitCommit 提交洗牌承諾
  - 承諾為秘密的 sha256, 期限內每個參與座位各提交一次
*/
func (te *tableEngine) SubmitCommit(playerID string, commitment []byte) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	state := te.table.State
	if state.Phase != TablePhase_Commit {
		return ErrTableInvalidPhase
	}

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}
	seat := state.Seats[seatIdx]
	if !seat.InHand() {
		return ErrTableSeatNotInHand
	}
	if seat.Commitment != nil {
		return ErrTableAlreadyCommitted
	}
	if err := dealer.ValidateCommitment(commitment); err != nil {
		return err
	}

	seat.Commitment = append([]byte(nil), commitment...)
	te.rg.Ready(int64(seatIdx))

	te.emitEvent("SubmitCommit", playerID)
	te.emitTableEvent(TableEvent_CommitSubmitted, seatIdx, 0)

	// an early full house advances immediately, nobody waits out the deadline
	if len(te.inHandSeatsWith(hasCommitment)) == len(te.table.InHandSeatIndexes()) {
		te.enterRevealPhase()
	}
	return nil
}

/*
RevealSecret 揭示洗牌秘密
  - 秘密必須雜湊回先前的承諾, 不符者拒絕且可於期限內重試
*/
func (te *tableEngine) RevealSecret(playerID string, secret []byte) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	state := te.table.State
	if state.Phase != TablePhase_Reveal {
		return ErrTableInvalidPhase
	}

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}
	seat := state.Seats[seatIdx]
	if !seat.InHand() {
		return ErrTableSeatNotInHand
	}
	if seat.RevealedSecret != nil {
		return ErrTableAlreadyRevealed
	}
	if err := dealer.VerifyReveal(secret, seat.Commitment); err != nil {
		return err
	}

	seat.RevealedSecret = append([]byte(nil), secret...)
	te.rg.Ready(int64(seatIdx))

	te.emitEvent("RevealSecret", playerID)
	te.emitTableEvent(TableEvent_SecretRevealed, seatIdx, 0)

	if len(te.inHandSeatsWith(hasRevealedSecret)) == len(te.table.InHandSeatIndexes()) {
		te.dealAndBeginHand()
	}
	return nil
}

/*
HandleTimeout 處理已到期的期限
  - 冪等: 沒有期限到期時不做任何事
  - 承諾逾時: 未承諾座位轉暫離, 剩餘不足兩人則中止本手
  - 揭示逾時: 未揭示座位罰金並轉暫離, 剩餘足夠則照常發牌
  - 動作逾時: 輪到的座位自動棄牌
*/
func (te *tableEngine) HandleTimeout() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	state := te.table.State
	now := te.now()

	switch {
	case state.Phase == TablePhase_Commit && state.CommitDeadline != UnsetValue && now >= state.CommitDeadline:
		te.handleCommitTimeout()
	case state.Phase == TablePhase_Reveal && state.RevealDeadline != UnsetValue && now >= state.RevealDeadline:
		te.handleRevealTimeout()
	case state.Phase.IsBetting() && state.ActionDeadline != UnsetValue && now >= state.ActionDeadline:
		te.handleActionTimeout()
	}
	return nil
}

/*
EmergencyAbort 緊急中止本手
  - 退還本手所有下注, 罰金與已收抽水不退
*/
func (te *tableEngine) EmergencyAbort() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Phase == TablePhase_Waiting {
		return nil
	}

	te.abortHand()
	te.emitEvent("EmergencyAbort", "")
	return nil
}

func (te *tableEngine) enterRevealPhase() {
	state := te.table.State
	state.Phase = TablePhase_Reveal
	state.RevealDeadline = te.now() + int64(te.table.Meta.RevealTimeout)

	te.armReadyGroup(te.table.InHandSeatIndexes(), te.table.Meta.RevealTimeout)
	te.emitTableEvent(TableEvent_PhaseAdvanced, UnsetValue, 0)
}

// dealAndBeginHand derives the shuffle seed from every revealed secret, deals
// encrypted hole cards and opens preflop betting.
func (te *tableEngine) dealAndBeginHand() {
	te.rg.Stop()

	state := te.table.State
	meta := te.table.Meta

	participants := te.inHandSeatsWith(hasRevealedSecret)
	secrets := make([][]byte, 0, len(participants))
	for _, idx := range participants {
		secrets = append(secrets, state.Seats[idx].RevealedSecret)
	}

	seed := dealer.DeriveSeed(secrets, state.CommitDeadline, state.RevealDeadline, te.entropy.HeightHint())
	te.deck = dealer.ShuffledDeck(seed)
	te.deckCursor = 0

	state.Pot = pot.NewManager(meta.MaxSeatCount)
	state.Pot.SetLogger(te.log)

	// two passes starting left of the button, like a live deal
	order := seatsInOrderFrom(participants, state.DealerSeat, meta.MaxSeatCount)
	holes := make(map[int][]holdem.Card, len(order))
	for pass := 0; pass < dealer.HoleCardCount; pass++ {
		for _, idx := range order {
			holes[idx] = append(holes[idx], te.draw())
		}
	}
	for _, idx := range participants {
		seat := state.Seats[idx]
		key := dealer.HoleCardKey(seat.RevealedSecret, idx)
		seat.EncryptedHoleCards = dealer.EncryptHoleCards(key, holes[idx])
	}

	state.Phase = TablePhase_Preflop
	state.CommunityCards = []holdem.Card{}
	te.emitTableEvent(TableEvent_HoleCardsDealt, UnsetValue, 0)

	// antes are dead chips
	if meta.Ante > 0 {
		for _, idx := range participants {
			te.payDead(idx, meta.Ante)
		}
	}

	// blinds; heads-up the button posts the small blind. The button seat may
	// have dropped out during commit or reveal, then it only anchors position.
	var sbSeat, bbSeat int
	dealerInHand := state.Seats[state.DealerSeat] != nil && state.Seats[state.DealerSeat].InHand()
	if len(participants) == 2 && dealerInHand {
		sbSeat = state.DealerSeat
	} else {
		sbSeat = findSeatAfter(state.Seats, state.DealerSeat, seatInHand)
	}
	bbSeat = findSeatAfter(state.Seats, sbSeat, seatInHand)

	// settle owed blinds and track seats the big blind passes while absent
	prevBBSeat := state.CurrentBBSeat
	state.CurrentBBSeat = bbSeat
	for idx, s := range state.Seats {
		if s == nil {
			continue
		}
		if s.InHand() {
			if s.MissedBlinds > 0 {
				owed := te.payDead(idx, int64(s.MissedBlinds)*meta.BB)
				s.MissedBlinds = 0
				te.emitTableEvent(TableEvent_BlindPosted, idx, owed)
			}
		} else if isSeatPassed(prevBBSeat, bbSeat, idx, meta.MaxSeatCount) {
			s.MissedBlinds++
		}
	}

	te.postBlind(sbSeat, meta.SB)
	te.postBlind(bbSeat, meta.BB)

	state.BetToAmount = meta.BB
	state.MinRaiseAmount = meta.BB
	state.WagerIntervalID = 0

	te.emitEvent("DealHand", "")
	te.emitTableEvent(TableEvent_PhaseAdvanced, UnsetValue, 0)
	te.continueBettingRound(bbSeat)
}

// settleShowdown decrypts every contender's hole cards with their revealed
// secret, ranks the hands and pays the pots.
func (te *tableEngine) settleShowdown() {
	state := te.table.State

	state.Phase = TablePhase_Showdown
	te.emitTableEvent(TableEvent_PhaseAdvanced, UnsetValue, 0)

	ranks := make(map[int]holdem.HandRank)
	for idx, s := range state.Seats {
		if s == nil || (s.Status != SeatStatus_Active && s.Status != SeatStatus_AllIn) {
			continue
		}
		key := dealer.HoleCardKey(s.RevealedSecret, idx)
		hole := dealer.DecryptHoleCards(key, s.EncryptedHoleCards)

		cards := make([]holdem.Card, 0, len(hole)+len(state.CommunityCards))
		cards = append(cards, hole...)
		cards = append(cards, state.CommunityCards...)
		rank, err := holdem.Evaluate7(cards)
		if err != nil {
			te.emitErrorEvent("settleShowdown", s.PlayerID, err)
			continue
		}
		ranks[idx] = rank
	}

	te.settlePots(ranks)
}

// settleFoldWin ends the hand when a single seat remains unfolded. The pots
// each have one eligible seat, so no cards are evaluated or exposed.
func (te *tableEngine) settleFoldWin() {
	state := te.table.State

	if seatIdx, amount := state.Pot.ReturnUncalled(); seatIdx != UnsetValue {
		state.Seats[seatIdx].ChipStack += amount
		te.emitTableEvent(TableEvent_UncalledBetReturned, seatIdx, amount)
	}
	state.Pot.CollectBets()

	te.settlePots(nil)
}

// settlePots rakes the settled pot, distributes every tier and tears the hand
// down. A nil rank map is fine when each pot has a single eligible seat.
func (te *tableEngine) settlePots(ranks map[int]holdem.HandRank) {
	state := te.table.State
	meta := te.table.Meta

	pots := state.Pot.Build(te.table.foldedMask())

	// without a collector the fee is waived and stays with the winners
	if meta.FeeCollectorID != "" && len(pots) > 0 {
		fee := state.Fees.Rake(state.Pot.Total())
		if fee > pots[0].Amount {
			fee = pots[0].Amount
		}
		if fee > 0 {
			pots[0].Amount -= fee
			state.TotalFeesCollected += fee
			if err := te.ledger.Credit(meta.FeeCollectorID, fee); err != nil {
				te.emitErrorEvent("collect fee", meta.FeeCollectorID, err)
			}
			te.emitTableEvent(TableEvent_FeeCollected, UnsetValue, fee)
		}
	}

	payouts := state.Pot.Distribute(pots, ranks, state.DealerSeat)
	for seatIdx, amount := range payouts {
		state.Seats[seatIdx].ChipStack += amount
		te.emitTableEvent(TableEvent_PotAwarded, seatIdx, amount)
	}

	te.emitEvent("HandSettled", "")
	te.emitTableEvent(TableEvent_HandSettled, UnsetValue, 0)
	te.teardownHand()
}

// abortHand refunds every wager of the hand and returns the table to waiting.
// Reveal penalties and previously collected fees stay where they went.
func (te *tableEngine) abortHand() {
	state := te.table.State

	if state.Pot != nil {
		for idx, total := range state.Pot.TotalBets {
			if total > 0 && state.Seats[idx] != nil {
				state.Seats[idx].ChipStack += total
			}
		}
	}

	te.emitTableEvent(TableEvent_HandAborted, UnsetValue, 0)
	te.teardownHand()
}

// teardownHand resets all per-hand state. Seats flagged to leave are cashed
// out here; busted seats stay and wait for a top-up.
func (te *tableEngine) teardownHand() {
	state := te.table.State

	state.Phase = TablePhase_Waiting
	state.Pot = nil
	state.CommunityCards = nil
	state.BetToAmount = 0
	state.MinRaiseAmount = 0
	state.WagerIntervalID = 0
	state.ActionOnSeat = UnsetValue
	state.CommitDeadline = UnsetValue
	state.RevealDeadline = UnsetValue
	state.ActionDeadline = UnsetValue
	state.StraddleSeat = UnsetValue
	te.deck = nil
	te.deckCursor = 0

	te.tb.Cancel()
	te.rg.Stop()

	for idx, s := range state.Seats {
		if s == nil {
			continue
		}
		s.Status = SeatStatus_Waiting
		s.LastWagerInterval = UnsetValue
		s.Commitment = nil
		s.RevealedSecret = nil
		s.EncryptedHoleCards = nil

		if s.PendingLeave {
			if err := te.leaveSeat(idx); err != nil {
				te.emitErrorEvent("leave after hand", s.PlayerID, err)
			}
		}
	}
}

func (te *tableEngine) handleCommitTimeout() {
	state := te.table.State

	for _, idx := range te.table.InHandSeatIndexes() {
		seat := state.Seats[idx]
		if seat.Commitment != nil {
			continue
		}
		seat.SittingOut = true
		seat.Status = SeatStatus_Waiting
		te.emitTableEvent(TableEvent_SeatTimedOut, idx, 0)
	}

	if len(te.table.InHandSeatIndexes()) >= 2 {
		te.enterRevealPhase()
	} else {
		te.abortHand()
	}
}

func (te *tableEngine) handleRevealTimeout() {
	state := te.table.State
	meta := te.table.Meta

	for _, idx := range te.table.InHandSeatIndexes() {
		seat := state.Seats[idx]
		if seat.RevealedSecret != nil {
			continue
		}

		// committing and then withholding the secret is the one move that can
		// stall the shuffle, so it costs a slice of the stack
		penalty := seat.ChipStack * meta.RevealPenaltyBps / 10000
		if penalty > 0 && meta.FeeCollectorID != "" {
			seat.ChipStack -= penalty
			state.TotalFeesCollected += penalty
			if err := te.ledger.Credit(meta.FeeCollectorID, penalty); err != nil {
				te.emitErrorEvent("collect reveal penalty", seat.PlayerID, err)
			}
			te.emitTableEvent(TableEvent_SeatPenalized, idx, penalty)
		}

		seat.SittingOut = true
		seat.Status = SeatStatus_Waiting
		te.emitTableEvent(TableEvent_SeatTimedOut, idx, 0)
	}

	if len(te.table.InHandSeatIndexes()) >= 2 {
		te.dealAndBeginHand()
	} else {
		te.abortHand()
	}
}

func (te *tableEngine) handleActionTimeout() {
	state := te.table.State

	seatIdx := state.ActionOnSeat
	if seatIdx == UnsetValue || state.Seats[seatIdx] == nil {
		return
	}

	te.emitTableEvent(TableEvent_SeatTimedOut, seatIdx, 0)
	if err := te.applyFold(seatIdx); err != nil {
		te.emitErrorEvent("auto fold", state.Seats[seatIdx].PlayerID, err)
	}
}

// armReadyGroup tracks which in-hand seats responded during the commit and
// reveal phases and fires HandleTimeout when the window closes.
func (te *tableEngine) armReadyGroup(seatIndexes []int, timeoutSeconds int) {
	te.rg.Stop()
	te.rg.SetTimeoutInterval(timeoutSeconds)
	te.rg.OnTimeout(func(rg *syncsaga.ReadyGroup) {
		if te.options != nil && !te.options.AutoScheduleTimeouts {
			return
		}
		if err := te.HandleTimeout(); err != nil {
			te.emitErrorEvent("auto timeout", "", err)
		}
	})
	te.rg.OnCompleted(func(rg *syncsaga.ReadyGroup) {})

	te.rg.ResetParticipants()
	for _, idx := range seatIndexes {
		te.rg.Add(int64(idx), false)
	}
	te.rg.Start()
}
