package holdemtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltworks/holdemtable/dealer"
)

func threeHandedPlayers() []JoinPlayer {
	return []JoinPlayer{
		{PlayerID: "alice", Seat: 0, BuyInChips: 1000},
		{PlayerID: "bob", Seat: 1, BuyInChips: 1000},
		{PlayerID: "carol", Seat: 2, BuyInChips: 1000},
	}
}

func headsUpPlayers() []JoinPlayer {
	return []JoinPlayer{
		{PlayerID: "alice", Seat: 0, BuyInChips: 1000},
		{PlayerID: "bob", Seat: 1, BuyInChips: 1000},
	}
}

func stackSum(table *Table) int64 {
	var total int64
	for _, s := range table.OccupiedSeats() {
		total += s.ChipStack
	}
	return total
}

func TestFullHandCheckdown(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), threeHandedPlayers())
	table := engine.GetTable()

	startAndDeal(t, engine)
	assert.Equal(t, 1, table.State.HandNumber)
	assert.Equal(t, 0, table.State.DealerSeat)
	assert.Equal(t, 2, table.State.CurrentBBSeat)
	assert.Equal(t, int64(3000), table.TotalChips())

	playCheckdown(t, engine)

	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	assert.Nil(t, table.State.Pot)
	assert.Equal(t, int64(3000), stackSum(table))
	for _, s := range table.OccupiedSeats() {
		assert.Equal(t, SeatStatus_Waiting, s.Status)
		assert.Nil(t, s.EncryptedHoleCards)
	}
}

func TestHeadsUpFoldWin(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), headsUpPlayers())
	table := engine.GetTable()

	startAndDeal(t, engine)

	// the button posts the small blind and acts first preflop
	assert.Equal(t, 0, table.State.DealerSeat)
	assert.Equal(t, 1, table.State.CurrentBBSeat)
	assert.Equal(t, 0, table.State.ActionOnSeat)

	// out of turn and check-while-owing are both rejected
	assert.ErrorIs(t, engine.PlayerCheck("bob"), ErrTableOutOfTurn)
	assert.ErrorIs(t, engine.PlayerCheck("alice"), ErrTableInvalidWager)

	require.NoError(t, engine.PlayerFold("alice"))

	// bob keeps his blind's uncalled half and wins alice's small blind
	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	assert.Equal(t, int64(990), table.State.Seats[0].ChipStack)
	assert.Equal(t, int64(1010), table.State.Seats[1].ChipStack)
}

func TestCommitAndRevealValidation(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), headsUpPlayers())
	table := engine.GetTable()

	require.NoError(t, engine.StartHand())

	aliceSecret := secretFor("alice", 1)
	aliceCommit, err := dealer.Commit(aliceSecret)
	require.NoError(t, err)

	// reveal is not open yet
	assert.ErrorIs(t, engine.RevealSecret("alice", aliceSecret), ErrTableInvalidPhase)

	assert.ErrorIs(t, engine.SubmitCommit("alice", []byte{1, 2, 3}), dealer.ErrBadCommitmentSize)
	assert.ErrorIs(t, engine.SubmitCommit("ghost", aliceCommit), ErrTablePlayerNotFound)

	require.NoError(t, engine.SubmitCommit("alice", aliceCommit))
	assert.ErrorIs(t, engine.SubmitCommit("alice", aliceCommit), ErrTableAlreadyCommitted)

	bobSecret := secretFor("bob", 1)
	bobCommit, err := dealer.Commit(bobSecret)
	require.NoError(t, err)
	require.NoError(t, engine.SubmitCommit("bob", bobCommit))
	assert.Equal(t, TablePhase_Reveal, table.State.Phase)

	// commits are closed once everyone is in
	assert.ErrorIs(t, engine.SubmitCommit("alice", aliceCommit), ErrTableInvalidPhase)

	// a mismatching secret is rejected and the seat may retry
	assert.ErrorIs(t, engine.RevealSecret("alice", secretFor("alice", 99)), dealer.ErrCommitmentMismatch)
	require.NoError(t, engine.RevealSecret("alice", aliceSecret))
	assert.ErrorIs(t, engine.RevealSecret("alice", aliceSecret), ErrTableAlreadyRevealed)

	require.NoError(t, engine.RevealSecret("bob", bobSecret))
	assert.Equal(t, TablePhase_Preflop, table.State.Phase)
}

func TestHandleTimeoutIsIdempotent(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), headsUpPlayers())
	table := engine.GetTable()

	// nothing to do between hands
	require.NoError(t, engine.HandleTimeout())
	assert.Equal(t, TablePhase_Waiting, table.State.Phase)

	// nothing to do before the deadline
	require.NoError(t, engine.StartHand())
	require.NoError(t, engine.HandleTimeout())
	assert.Equal(t, TablePhase_Commit, table.State.Phase)
}

func TestCommitTimeoutSitsOutLaggards(t *testing.T) {
	engine, clock := newTestTable(t, defaultMeta(), threeHandedPlayers())
	table := engine.GetTable()

	require.NoError(t, engine.StartHand())
	for _, playerID := range []string{"alice", "bob"} {
		commitment, err := dealer.Commit(secretFor(playerID, 1))
		require.NoError(t, err)
		require.NoError(t, engine.SubmitCommit(playerID, commitment))
	}

	clock.Advance(31)
	require.NoError(t, engine.HandleTimeout())

	carol := table.State.Seats[2]
	assert.True(t, carol.SittingOut)
	assert.Equal(t, SeatStatus_Waiting, carol.Status)
	assert.Equal(t, int64(1000), carol.ChipStack)
	assert.Equal(t, TablePhase_Reveal, table.State.Phase)

	// the hand continues heads-up
	require.NoError(t, engine.RevealSecret("alice", secretFor("alice", 1)))
	require.NoError(t, engine.RevealSecret("bob", secretFor("bob", 1)))
	assert.Equal(t, TablePhase_Preflop, table.State.Phase)
	assert.ElementsMatch(t, []int{0, 1}, table.InHandSeatIndexes())
}

func TestCommitTimeoutAbortsShortHand(t *testing.T) {
	engine, clock := newTestTable(t, defaultMeta(), headsUpPlayers())
	table := engine.GetTable()

	require.NoError(t, engine.StartHand())
	commitment, err := dealer.Commit(secretFor("alice", 1))
	require.NoError(t, err)
	require.NoError(t, engine.SubmitCommit("alice", commitment))

	clock.Advance(31)
	require.NoError(t, engine.HandleTimeout())

	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	assert.True(t, table.State.Seats[1].SittingOut)
	assert.Equal(t, int64(1000), table.State.Seats[0].ChipStack)
	assert.Equal(t, int64(1000), table.State.Seats[1].ChipStack)
}

func TestRevealTimeoutPenalizesWithholder(t *testing.T) {
	ledger := NewMemoryChipLedger()
	for _, p := range threeHandedPlayers() {
		ledger.Deposit(p.PlayerID, p.BuyInChips)
	}

	meta := defaultMeta()
	meta.FeeCollectorID = "house"
	engine, clock := newTestTable(t, meta, threeHandedPlayers(), WithChipLedger(ledger))
	table := engine.GetTable()

	require.NoError(t, engine.StartHand())
	for _, playerID := range []string{"alice", "bob", "carol"} {
		commitment, err := dealer.Commit(secretFor(playerID, 1))
		require.NoError(t, err)
		require.NoError(t, engine.SubmitCommit(playerID, commitment))
	}
	require.NoError(t, engine.RevealSecret("alice", secretFor("alice", 1)))
	require.NoError(t, engine.RevealSecret("bob", secretFor("bob", 1)))

	clock.Advance(31)
	require.NoError(t, engine.HandleTimeout())

	// default penalty is 10% of the stack, paid to the collector
	carol := table.State.Seats[2]
	assert.Equal(t, int64(900), carol.ChipStack)
	assert.True(t, carol.SittingOut)
	assert.Equal(t, SeatStatus_Waiting, carol.Status)
	assert.Equal(t, int64(100), table.State.TotalFeesCollected)

	houseBalance, err := ledger.Balance("house")
	require.NoError(t, err)
	assert.Equal(t, int64(100), houseBalance)

	// the two revealers still get their hand
	assert.Equal(t, TablePhase_Preflop, table.State.Phase)
	assert.ElementsMatch(t, []int{0, 1}, table.InHandSeatIndexes())
}

func TestRevealTimeoutAbortsShortHand(t *testing.T) {
	meta := defaultMeta()
	meta.FeeCollectorID = "house"
	engine, clock := newTestTable(t, meta, headsUpPlayers())
	table := engine.GetTable()

	require.NoError(t, engine.StartHand())
	for _, playerID := range []string{"alice", "bob"} {
		commitment, err := dealer.Commit(secretFor(playerID, 1))
		require.NoError(t, err)
		require.NoError(t, engine.SubmitCommit(playerID, commitment))
	}
	require.NoError(t, engine.RevealSecret("alice", secretFor("alice", 1)))

	clock.Advance(31)
	require.NoError(t, engine.HandleTimeout())

	// the penalty sticks even though the hand is aborted
	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	assert.Equal(t, int64(900), table.State.Seats[1].ChipStack)
	assert.Equal(t, int64(1000), table.State.Seats[0].ChipStack)
}

func TestActionTimeoutAutoFolds(t *testing.T) {
	engine, clock := newTestTable(t, defaultMeta(), headsUpPlayers())
	table := engine.GetTable()

	startAndDeal(t, engine)
	require.Equal(t, 0, table.State.ActionOnSeat)

	clock.Advance(16)
	require.NoError(t, engine.HandleTimeout())

	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	assert.Equal(t, int64(990), table.State.Seats[0].ChipStack)
	assert.Equal(t, int64(1010), table.State.Seats[1].ChipStack)
}

func TestEmergencyAbortRefundsWagers(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), threeHandedPlayers())
	table := engine.GetTable()

	startAndDeal(t, engine)
	require.NoError(t, engine.PlayerRaiseTo("alice", 60))

	require.NoError(t, engine.EmergencyAbort())

	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	for _, s := range table.OccupiedSeats() {
		assert.Equal(t, int64(1000), s.ChipStack)
	}
}

func TestRakeCollectedAtShowdown(t *testing.T) {
	ledger := NewMemoryChipLedger()
	for _, p := range headsUpPlayers() {
		ledger.Deposit(p.PlayerID, p.BuyInChips)
	}

	meta := defaultMeta()
	meta.RakeBps = 50
	meta.FeeCollectorID = "house"
	engine, _ := newTestTable(t, meta, headsUpPlayers(), WithChipLedger(ledger))
	table := engine.GetTable()

	startAndDeal(t, engine)
	require.NoError(t, engine.PlayerRaiseTo("alice", 200))
	require.NoError(t, engine.PlayerCall("bob"))
	playCheckdown(t, engine)

	// 400 pot at 50 bps rakes exactly 2 chips with nothing pending
	assert.Equal(t, int64(2), table.State.TotalFeesCollected)
	assert.Equal(t, int64(0), table.State.Fees.Pending())
	assert.Equal(t, int64(1998), stackSum(table))

	houseBalance, err := ledger.Balance("house")
	require.NoError(t, err)
	assert.Equal(t, int64(2), houseBalance)
}

func TestMissedBlindsAccrueAndCollect(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), threeHandedPlayers())
	table := engine.GetTable()

	// hand 1: carol posts the big blind, then sits out
	startAndDeal(t, engine)
	require.Equal(t, 2, table.State.CurrentBBSeat)
	playFoldout(t, engine)
	require.NoError(t, engine.PlayerSitOut("carol"))

	// hands 2-4 run heads-up; the big blind passes carol's seat once
	for hand := 2; hand <= 4; hand++ {
		startAndDeal(t, engine)
		playFoldout(t, engine)
	}
	carol := table.State.Seats[2]
	assert.Equal(t, 1, carol.MissedBlinds)

	// the owed blind is collected as dead chips on her first hand back
	require.NoError(t, engine.PlayerSitIn("carol"))
	chipsBefore := carol.ChipStack
	startAndDeal(t, engine)
	assert.Equal(t, 0, carol.MissedBlinds)
	assert.Equal(t, chipsBefore-20, carol.ChipStack+table.State.Pot.CurrentBets[2])

	playFoldout(t, engine)
	assert.Equal(t, int64(3000), stackSum(table))
}

func TestStraddleDoublesTheStakes(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), threeHandedPlayers())
	table := engine.GetTable()

	startAndDeal(t, engine)
	require.Equal(t, 0, table.State.ActionOnSeat)

	require.NoError(t, engine.PlayerStraddle("alice"))
	assert.Equal(t, int64(40), table.State.BetToAmount)
	assert.Equal(t, 0, table.State.StraddleSeat)
	assert.Equal(t, int64(60), engine.MinRaiseTo())

	require.NoError(t, engine.PlayerFold("bob"))
	require.NoError(t, engine.PlayerCall("carol"))

	// the straddler keeps the option
	assert.Equal(t, 0, table.State.ActionOnSeat)
	require.NoError(t, engine.PlayerCheck("alice"))

	assert.Equal(t, TablePhase_Flop, table.State.Phase)
	assert.Equal(t, int64(90), table.State.Pot.Total())

	playCheckdown(t, engine)
	assert.Equal(t, int64(3000), stackSum(table))
}

func TestStraddleOnlyBeforeAction(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), threeHandedPlayers())

	startAndDeal(t, engine)
	require.NoError(t, engine.PlayerCall("alice"))
	assert.ErrorIs(t, engine.PlayerStraddle("bob"), ErrTableStraddleNotAllowed)
}

func TestAllInConfrontationRunsBoardOut(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), []JoinPlayer{
		{PlayerID: "alice", Seat: 0, BuyInChips: 1000},
		{PlayerID: "bob", Seat: 1, BuyInChips: 100},
		{PlayerID: "carol", Seat: 2, BuyInChips: 300},
	})
	table := engine.GetTable()

	startAndDeal(t, engine)
	require.NoError(t, engine.PlayerRaiseTo("alice", 300))
	require.NoError(t, engine.PlayerAllIn("bob"))
	require.NoError(t, engine.PlayerAllIn("carol"))

	// both calls are short, so the board runs out with no further action
	assert.Equal(t, TablePhase_Waiting, table.State.Phase)
	assert.Equal(t, int64(1400), stackSum(table))
}

func TestShortAllInDoesNotReopenAction(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), []JoinPlayer{
		{PlayerID: "alice", Seat: 0, BuyInChips: 1000},
		{PlayerID: "bob", Seat: 1, BuyInChips: 1000},
		{PlayerID: "carol", Seat: 2, BuyInChips: 130},
	})
	table := engine.GetTable()

	startAndDeal(t, engine)
	require.NoError(t, engine.PlayerRaiseTo("alice", 100))
	require.NoError(t, engine.PlayerCall("bob"))

	// carol's all-in to 130 is short of a full raise
	require.NoError(t, engine.PlayerAllIn("carol"))
	assert.Equal(t, int64(130), table.State.BetToAmount)

	assert.ErrorIs(t, engine.PlayerRaiseTo("alice", 300), ErrTableActionNotReopened)
	require.NoError(t, engine.PlayerCall("alice"))
	require.NoError(t, engine.PlayerCall("bob"))
	assert.Equal(t, TablePhase_Flop, table.State.Phase)

	playCheckdown(t, engine)
	assert.Equal(t, int64(2130), stackSum(table))
}

func TestPlayerHoleCardsRequiresSecret(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), headsUpPlayers())

	startAndDeal(t, engine)

	cards, err := engine.PlayerHoleCards("alice", secretFor("alice", 1))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.NotEqual(t, cards[0], cards[1])
	assert.Less(t, uint8(cards[0]), uint8(52))
	assert.Less(t, uint8(cards[1]), uint8(52))

	_, err = engine.PlayerHoleCards("alice", secretFor("alice", 2))
	assert.ErrorIs(t, err, dealer.ErrCommitmentMismatch)

	_, err = engine.PlayerHoleCards("ghost", secretFor("ghost", 1))
	assert.ErrorIs(t, err, ErrTablePlayerNotFound)
}

func TestHandEmitsEventStream(t *testing.T) {
	engine, _ := newTestTable(t, defaultMeta(), headsUpPlayers())

	seen := map[string]int{}
	engine.OnTableEventEmitted(func(event TableEvent) {
		seen[event.Name]++
	})

	startAndDeal(t, engine)
	playCheckdown(t, engine)

	assert.Equal(t, 1, seen[TableEvent_HandStarted])
	assert.Equal(t, 2, seen[TableEvent_CommitSubmitted])
	assert.Equal(t, 2, seen[TableEvent_SecretRevealed])
	assert.Equal(t, 1, seen[TableEvent_HoleCardsDealt])
	assert.Equal(t, 2, seen[TableEvent_BlindPosted])
	assert.Equal(t, 1, seen[TableEvent_HandSettled])
	assert.GreaterOrEqual(t, seen[TableEvent_PotAwarded], 1)
}
