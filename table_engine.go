package holdemtable

import (
	"errors"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/weedbox/syncsaga"
	"github.com/weedbox/timebank"

	"github.com/feltworks/holdemtable/dealer"
	"github.com/feltworks/holdemtable/holdem"
)

var (
	ErrTableNoEmptySeats         = errors.New("table: no empty seats available")
	ErrTableSeatTaken            = errors.New("table: seat is already taken")
	ErrTableInvalidCreateSetting = errors.New("table: invalid create table setting")
	ErrTablePlayerNotFound       = errors.New("table: player not found")
	ErrTablePlayerAlreadySeated  = errors.New("table: player already holds a seat")
	ErrTableInvalidBuyIn         = errors.New("table: buy-in amount out of range")
	ErrTableInvalidPhase         = errors.New("table: action not allowed in current phase")
	ErrTableNotEnoughPlayers     = errors.New("table: not enough eligible players")
	ErrTableSeatNotInHand        = errors.New("table: seat is not in the current hand")
	ErrTableAlreadyCommitted     = errors.New("table: seat already committed")
	ErrTableAlreadyRevealed      = errors.New("table: seat already revealed")
	ErrTableOutOfTurn            = errors.New("table: action is on another seat")
	ErrTableInvalidWager         = errors.New("table: invalid wager")
	ErrTableWagerTooSmall        = errors.New("table: raise below minimum")
	ErrTableActionNotReopened    = errors.New("table: seat may not raise again this interval")
	ErrTableInsufficientChips    = errors.New("table: not enough chips at the seat")
	ErrTableStraddleNotAllowed   = errors.New("table: straddle not allowed now")
	ErrTableTopUpNotAllowed      = errors.New("table: top-up not allowed during a hand")
)

type TableEngineOpt func(*tableEngine)

type TableEngine interface {
	// Events
	OnTableUpdated(fn func(*Table))                 // 桌次更新事件監聽器
	OnTableErrorUpdated(fn func(*Table, error))     // 錯誤更新事件監聽器
	OnTableEventEmitted(fn func(TableEvent))        // 桌次事件監聽器

	// Table Actions
	GetTable() *Table                                      // 取得桌次
	CreateTable(tableSetting TableSetting) (*Table, error) // 建立桌
	CloseTable() error                                     // 關閉桌
	StartHand() error                                      // 開始新的一手
	HandleTimeout() error                                  // 處理已到期的期限
	EmergencyAbort() error                                 // 緊急中止本手並退還下注

	// Player Table Actions
	PlayerJoin(joinPlayer JoinPlayer) error             // 玩家買入入桌
	PlayerTopUp(playerID string, chips int64) error     // 增購籌碼
	PlayersLeave(playerIDs []string) error              // 玩家們離桌
	PlayerSitOut(playerID string) error                 // 玩家暫離
	PlayerSitIn(playerID string) error                  // 玩家回座

	// Shuffle Actions
	SubmitCommit(playerID string, commitment []byte) error // 提交洗牌承諾
	RevealSecret(playerID string, secret []byte) error     // 揭示洗牌秘密

	// Player Wager Actions
	PlayerFold(playerID string) error                   // 玩家棄牌
	PlayerCheck(playerID string) error                  // 玩家過牌
	PlayerCall(playerID string) error                   // 玩家跟注
	PlayerRaiseTo(playerID string, betTo int64) error   // 玩家加注到指定額
	PlayerAllIn(playerID string) error                  // 玩家全下
	PlayerStraddle(playerID string) error               // 玩家抓注

	// Queries
	CallAmount(playerID string) (int64, error)                            // 查詢跟注所需籌碼
	MinRaiseTo() int64                                                    // 查詢最小加注到額
	PlayerHoleCards(playerID string, secret []byte) ([]holdem.Card, error) // 以秘密解回底牌
}

type tableEngine struct {
	lock                sync.Mutex
	options             *TableEngineOptions
	table               *Table
	ledger              ChipLedger
	entropy             EntropySource
	log                 slog.Logger
	now                 func() int64
	rg                  *syncsaga.ReadyGroup
	tb                  *timebank.TimeBank
	deck                []holdem.Card
	deckCursor          int
	onTableUpdated      func(*Table)
	onTableErrorUpdated func(*Table, error)
	onTableEventEmitted func(TableEvent)
}

func NewTableEngine(options *TableEngineOptions, opts ...TableEngineOpt) TableEngine {
	callbacks := NewTableEngineCallbacks()
	te := &tableEngine{
		options:             options,
		ledger:              nopChipLedger{},
		entropy:             systemEntropy(),
		log:                 slog.Disabled,
		now:                 func() int64 { return time.Now().Unix() },
		rg:                  syncsaga.NewReadyGroup(),
		tb:                  timebank.NewTimeBank(),
		onTableUpdated:      callbacks.OnTableUpdated,
		onTableErrorUpdated: callbacks.OnTableErrorUpdated,
		onTableEventEmitted: callbacks.OnTableEventEmitted,
	}

	for _, opt := range opts {
		opt(te)
	}

	return te
}

// WithChipLedger wires the external account book that buy-ins, cash-outs and
// fees settle against.
func WithChipLedger(ledger ChipLedger) TableEngineOpt {
	return func(te *tableEngine) {
		te.ledger = ledger
	}
}

// WithEntropySource wires the post-commit entropy hint for the shuffle seed.
func WithEntropySource(src EntropySource) TableEngineOpt {
	return func(te *tableEngine) {
		te.entropy = src
	}
}

func WithLogger(log slog.Logger) TableEngineOpt {
	return func(te *tableEngine) {
		te.log = log
	}
}

// WithNowFunc overrides the engine clock. Deadlines and timeout checks use it
// exclusively, which keeps timeout behavior reproducible under test.
func WithNowFunc(now func() int64) TableEngineOpt {
	return func(te *tableEngine) {
		te.now = now
	}
}

func (te *tableEngine) OnTableUpdated(fn func(*Table)) {
	te.onTableUpdated = fn
}

func (te *tableEngine) OnTableErrorUpdated(fn func(*Table, error)) {
	te.onTableErrorUpdated = fn
}

func (te *tableEngine) OnTableEventEmitted(fn func(TableEvent)) {
	te.onTableEventEmitted = fn
}

func (te *tableEngine) GetTable() *Table {
	return te.table
}

func (te *tableEngine) CreateTable(tableSetting TableSetting) (*Table, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	normalizeTableSetting(&tableSetting)
	if err := validateTableSetting(tableSetting); err != nil {
		return nil, err
	}

	table := &Table{
		ID: tableSetting.TableID,
	}
	if table.ID == "" {
		table.ID = uuid.New().String()
	}
	table.ConfigureWithSetting(tableSetting)
	te.table = table

	// handle auto join players
	for _, joinPlayer := range tableSetting.JoinPlayers {
		if err := te.playerJoin(joinPlayer); err != nil {
			te.table = nil
			return nil, err
		}
	}

	te.emitEvent("CreateTable", "")
	te.emitTableEvent(TableEvent_Created, UnsetValue, 0)
	return te.table, nil
}

/*
CloseTable 關閉桌次
  - 適用時機: 強制關閉、正常關閉
*/
func (te *tableEngine) CloseTable() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Phase != TablePhase_Waiting {
		te.abortHand()
	}

	// cash every remaining stack back out
	for idx, s := range te.table.State.Seats {
		if s == nil {
			continue
		}
		if s.ChipStack > 0 {
			if err := te.ledger.Credit(s.PlayerID, s.ChipStack); err != nil {
				return err
			}
		}
		te.table.State.Seats[idx] = nil
	}

	te.rg.Stop()
	te.tb.Cancel()

	te.emitEvent("CloseTable", "")
	te.emitTableEvent(TableEvent_Closed, UnsetValue, 0)
	return nil
}

/*
PlayerJoin 玩家買入入桌
  - 適用時機: 新玩家帶籌碼入桌
*/
func (te *tableEngine) PlayerJoin(joinPlayer JoinPlayer) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if err := te.playerJoin(joinPlayer); err != nil {
		return err
	}

	te.emitEvent("PlayerJoin", joinPlayer.PlayerID)
	return nil
}

func (te *tableEngine) playerJoin(joinPlayer JoinPlayer) error {
	meta := te.table.Meta
	if joinPlayer.BuyInChips < meta.MinBuyIn {
		return ErrTableInvalidBuyIn
	}
	if meta.MaxBuyIn > 0 && joinPlayer.BuyInChips > meta.MaxBuyIn {
		return ErrTableInvalidBuyIn
	}

	// one identity, one seat
	if te.table.FindSeatByPlayerID(joinPlayer.PlayerID) != UnsetValue {
		return ErrTablePlayerAlreadySeated
	}

	seatIdx := RandomSeat(te.table.State.Seats)
	if joinPlayer.Seat != UnsetValue {
		if joinPlayer.Seat < 0 || joinPlayer.Seat >= meta.MaxSeatCount {
			return ErrTableSeatTaken
		}
		if te.table.State.Seats[joinPlayer.Seat] != nil {
			return ErrTableSeatTaken
		}
		seatIdx = joinPlayer.Seat
	}
	if seatIdx == UnsetValue {
		return ErrTableNoEmptySeats
	}

	if err := te.ledger.Debit(joinPlayer.PlayerID, joinPlayer.BuyInChips); err != nil {
		return err
	}

	te.table.State.Seats[seatIdx] = &SeatState{
		PlayerID:          joinPlayer.PlayerID,
		ChipStack:         joinPlayer.BuyInChips,
		Status:            SeatStatus_Waiting,
		LastWagerInterval: UnsetValue,
	}

	te.emitTableEvent(TableEvent_PlayerJoined, seatIdx, joinPlayer.BuyInChips)
	return nil
}

/*
PlayerTopUp 增購籌碼
  - 適用時機: 兩手之間補碼, 本手進行中的座位不可增購
*/
func (te *tableEngine) PlayerTopUp(playerID string, chips int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}
	seat := te.table.State.Seats[seatIdx]

	if seat.InHand() {
		return ErrTableTopUpNotAllowed
	}
	if chips <= 0 {
		return ErrTableInvalidBuyIn
	}
	if te.table.Meta.MaxBuyIn > 0 && seat.ChipStack+chips > te.table.Meta.MaxBuyIn {
		return ErrTableInvalidBuyIn
	}

	if err := te.ledger.Debit(playerID, chips); err != nil {
		return err
	}
	seat.ChipStack += chips

	te.emitEvent("PlayerTopUp", playerID)
	te.emitTableEvent(TableEvent_PlayerToppedUp, seatIdx, chips)
	return nil
}

/*
PlayersLeave 玩家們離開桌次
  - 適用時機: 玩家離桌結算
  - 本手進行中的座位先標記, 結算後才離桌
*/
func (te *tableEngine) PlayersLeave(playerIDs []string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	for _, playerID := range playerIDs {
		seatIdx := te.table.FindSeatByPlayerID(playerID)
		if seatIdx == UnsetValue {
			return ErrTablePlayerNotFound
		}
		seat := te.table.State.Seats[seatIdx]

		if seat.InHand() {
			seat.PendingLeave = true
			continue
		}
		if err := te.leaveSeat(seatIdx); err != nil {
			return err
		}
	}

	te.emitEvent("PlayersLeave", "")
	return nil
}

/*
PlayerSitOut 玩家暫離
  - 暫離座位下一手起不參與, 大盲經過時累計積欠
*/
func (te *tableEngine) PlayerSitOut(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}

	te.table.State.Seats[seatIdx].SittingOut = true

	te.emitEvent("PlayerSitOut", playerID)
	te.emitTableEvent(TableEvent_PlayerSatOut, seatIdx, 0)
	return nil
}

/*
PlayerSitIn 玩家回座
  - 積欠的大盲在下一手翻牌前補收
*/
func (te *tableEngine) PlayerSitIn(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}

	te.table.State.Seats[seatIdx].SittingOut = false

	te.emitEvent("PlayerSitIn", playerID)
	te.emitTableEvent(TableEvent_PlayerSatIn, seatIdx, 0)
	return nil
}

func (te *tableEngine) PlayerFold(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx, err := te.validateWagerTurn(playerID)
	if err != nil {
		return err
	}
	return te.applyFold(seatIdx)
}

func (te *tableEngine) PlayerCheck(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx, err := te.validateWagerTurn(playerID)
	if err != nil {
		return err
	}
	return te.applyCheck(seatIdx)
}

func (te *tableEngine) PlayerCall(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx, err := te.validateWagerTurn(playerID)
	if err != nil {
		return err
	}
	return te.applyCall(seatIdx)
}

func (te *tableEngine) PlayerRaiseTo(playerID string, betTo int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx, err := te.validateWagerTurn(playerID)
	if err != nil {
		return err
	}
	return te.applyRaiseTo(seatIdx, betTo)
}

func (te *tableEngine) PlayerAllIn(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx, err := te.validateWagerTurn(playerID)
	if err != nil {
		return err
	}
	return te.applyAllIn(seatIdx)
}

func (te *tableEngine) PlayerStraddle(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx, err := te.validateWagerTurn(playerID)
	if err != nil {
		return err
	}
	return te.applyStraddle(seatIdx)
}

// CallAmount reports what the player still owes to match the street's highest
// bet. Zero means a check is available.
func (te *tableEngine) CallAmount(playerID string) (int64, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return 0, ErrTablePlayerNotFound
	}
	if !te.table.State.Phase.IsBetting() || te.table.State.Pot == nil {
		return 0, ErrTableInvalidPhase
	}
	return te.table.State.Pot.CallAmount(seatIdx), nil
}

// MinRaiseTo reports the lowest legal raise target on the current street.
func (te *tableEngine) MinRaiseTo() int64 {
	te.lock.Lock()
	defer te.lock.Unlock()

	return te.table.State.BetToAmount + te.table.State.MinRaiseAmount
}

// PlayerHoleCards decrypts the caller's hole cards. The secret must match the
// seat's commitment; nobody else can produce the key.
func (te *tableEngine) PlayerHoleCards(playerID string, secret []byte) ([]holdem.Card, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatIdx := te.table.FindSeatByPlayerID(playerID)
	if seatIdx == UnsetValue {
		return nil, ErrTablePlayerNotFound
	}
	seat := te.table.State.Seats[seatIdx]
	if len(seat.EncryptedHoleCards) == 0 {
		return nil, ErrTableSeatNotInHand
	}
	if err := dealer.VerifyReveal(secret, seat.Commitment); err != nil {
		return nil, err
	}

	key := dealer.HoleCardKey(secret, seatIdx)
	return dealer.DecryptHoleCards(key, seat.EncryptedHoleCards), nil
}

func normalizeTableSetting(setting *TableSetting) {
	if setting.Meta.MaxSeatCount == 0 {
		setting.Meta.MaxSeatCount = MaxSeatCount
	}
	if setting.Meta.CommitTimeout == 0 {
		setting.Meta.CommitTimeout = 30
	}
	if setting.Meta.RevealTimeout == 0 {
		setting.Meta.RevealTimeout = 30
	}
	if setting.Meta.ActionTimeout == 0 {
		setting.Meta.ActionTimeout = 15
	}
	if setting.Meta.RevealPenaltyBps == 0 {
		setting.Meta.RevealPenaltyBps = 1000 // 10% of the stack
	}
}

func validateTableSetting(setting TableSetting) error {
	meta := setting.Meta
	if meta.MaxSeatCount < 2 || meta.MaxSeatCount > MaxSeatCount {
		return ErrTableInvalidCreateSetting
	}
	if meta.SB <= 0 || meta.BB <= 0 || meta.SB > meta.BB {
		return ErrTableInvalidCreateSetting
	}
	if meta.Ante < 0 || meta.RakeBps < 0 || meta.RevealPenaltyBps < 0 {
		return ErrTableInvalidCreateSetting
	}
	if meta.MinBuyIn < 0 || (meta.MaxBuyIn > 0 && meta.MinBuyIn > meta.MaxBuyIn) {
		return ErrTableInvalidCreateSetting
	}
	if len(setting.JoinPlayers) > meta.MaxSeatCount {
		return ErrTableInvalidCreateSetting
	}
	return nil
}
