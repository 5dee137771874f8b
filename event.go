package holdemtable

const (
	TableEvent_Created             = "Created"
	TableEvent_Closed              = "Closed"
	TableEvent_PlayerJoined        = "PlayerJoined"
	TableEvent_PlayerToppedUp      = "PlayerToppedUp"
	TableEvent_PlayerLeft          = "PlayerLeft"
	TableEvent_PlayerSatOut        = "PlayerSatOut"
	TableEvent_PlayerSatIn         = "PlayerSatIn"
	TableEvent_HandStarted         = "HandStarted"
	TableEvent_CommitSubmitted     = "CommitSubmitted"
	TableEvent_SecretRevealed      = "SecretRevealed"
	TableEvent_HoleCardsDealt      = "HoleCardsDealt"
	TableEvent_BlindPosted         = "BlindPosted"
	TableEvent_PhaseAdvanced       = "PhaseAdvanced"
	TableEvent_UncalledBetReturned = "UncalledBetReturned"
	TableEvent_PotAwarded          = "PotAwarded"
	TableEvent_FeeCollected        = "FeeCollected"
	TableEvent_SeatTimedOut        = "SeatTimedOut"
	TableEvent_SeatPenalized       = "SeatPenalized"
	TableEvent_HandSettled         = "HandSettled"
	TableEvent_HandAborted         = "HandAborted"
)

// TableEvent is one emitted table occurrence: who did what for how much,
// stamped with the hand and phase it happened in.
type TableEvent struct {
	Name       string     `json:"name"`
	HandNumber int        `json:"hand_number"`
	Phase      TablePhase `json:"phase"`
	Seat       int        `json:"seat"`
	PlayerID   string     `json:"player_id,omitempty"`
	Amount     int64      `json:"amount,omitempty"`
}

func (te *tableEngine) emitEvent(eventName string, playerID string) {
	te.table.RefreshUpdateAt()

	te.log.Debugf("[Table %s][#%d][%d][%s] emit Event: %s", te.table.ID, te.table.UpdateSerial, te.table.State.HandNumber, playerID, eventName)
	te.onTableUpdated(te.table)
}

func (te *tableEngine) emitErrorEvent(eventName string, playerID string, err error) {
	te.log.Errorf("[Table %s][#%d][%d][%s] emit ERROR Event: %s, Error: %v", te.table.ID, te.table.UpdateSerial, te.table.State.HandNumber, playerID, eventName, err)
	te.onTableErrorUpdated(te.table, err)
}

func (te *tableEngine) emitTableEvent(name string, seat int, amount int64) {
	playerID := ""
	if seat != UnsetValue && te.table.State.Seats[seat] != nil {
		playerID = te.table.State.Seats[seat].PlayerID
	}
	te.onTableEventEmitted(TableEvent{
		Name:       name,
		HandNumber: te.table.State.HandNumber,
		Phase:      te.table.State.Phase,
		Seat:       seat,
		PlayerID:   playerID,
		Amount:     amount,
	})
}
