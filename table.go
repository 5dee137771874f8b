package holdemtable

import (
	"encoding/json"
	"time"

	"github.com/thoas/go-funk"

	"github.com/feltworks/holdemtable/holdem"
	"github.com/feltworks/holdemtable/pot"
	"github.com/feltworks/holdemtable/rake"
)

type TablePhase string

const (
	TablePhase_Waiting  TablePhase = "waiting"  // 桌次等待開局
	TablePhase_Commit   TablePhase = "commit"   // 收集洗牌承諾
	TablePhase_Reveal   TablePhase = "reveal"   // 收集洗牌揭示
	TablePhase_Preflop  TablePhase = "preflop"  // 翻牌前下注
	TablePhase_Flop     TablePhase = "flop"     // 翻牌下注
	TablePhase_Turn     TablePhase = "turn"     // 轉牌下注
	TablePhase_River    TablePhase = "river"    // 河牌下注
	TablePhase_Showdown TablePhase = "showdown" // 攤牌結算
)

// IsBetting reports whether the phase accepts wager actions.
func (p TablePhase) IsBetting() bool {
	switch p {
	case TablePhase_Preflop, TablePhase_Flop, TablePhase_Turn, TablePhase_River:
		return true
	}
	return false
}

type SeatStatus string

const (
	SeatStatus_Waiting SeatStatus = "waiting" // 入座但不在本手
	SeatStatus_Active  SeatStatus = "active"  // 本手仍可動作
	SeatStatus_Folded  SeatStatus = "folded"  // 本手已棄牌
	SeatStatus_AllIn   SeatStatus = "allin"   // 本手已全下
)

type Table struct {
	ID           string      `json:"id"`
	Meta         TableMeta   `json:"meta"`
	State        *TableState `json:"state"`
	UpdateAt     int64       `json:"update_at"`     // 更新時間 (Seconds)
	UpdateSerial int64       `json:"update_serial"` // 更新序列號 (數字越大越晚發生)
}

type TableMeta struct {
	Name             string `json:"name"`               // 桌次名稱
	MaxSeatCount     int    `json:"max_seat_count"`     // 座位數 (最多 5)
	SB               int64  `json:"sb"`                 // 小盲籌碼量
	BB               int64  `json:"bb"`                 // 大盲籌碼量
	Ante             int64  `json:"ante"`               // 前注籌碼量
	MinBuyIn         int64  `json:"min_buy_in"`         // 最小買入
	MaxBuyIn         int64  `json:"max_buy_in"`         // 最大買入 (0 表示不限)
	RakeBps          int64  `json:"rake_bps"`           // 抽水 (基點)
	FeeCollectorID   string `json:"fee_collector_id"`   // 抽水收款帳戶 (空值表示免抽)
	RevealPenaltyBps int64  `json:"reveal_penalty_bps"` // 未揭示罰金 (基點)
	CommitTimeout    int    `json:"commit_timeout"`     // 承諾期限 (Seconds)
	RevealTimeout    int    `json:"reveal_timeout"`     // 揭示期限 (Seconds)
	ActionTimeout    int    `json:"action_timeout"`     // 動作期限 (Seconds)
}

type TableState struct {
	Phase              TablePhase        `json:"phase"`                // 當前階段
	HandNumber         int               `json:"hand_number"`          // 執行手數 (遊戲跑幾輪)
	StartAt            int64             `json:"start_at"`             // 開打時間 (Seconds)
	Seats              []*SeatState      `json:"seats"`                // 座位狀態, index: seat index, nil 表示空位
	DealerSeat         int               `json:"dealer_seat"`          // 當前 Dealer 座位編號
	CurrentBBSeat      int               `json:"current_bb_seat"`      // 當前 BB 座位編號
	StraddleSeat       int               `json:"straddle_seat"`        // 本手抓注座位編號
	ActionOnSeat       int               `json:"action_on_seat"`       // 輪到動作的座位編號
	BetToAmount        int64             `json:"bet_to_amount"`        // 本街最高下注額
	MinRaiseAmount     int64             `json:"min_raise_amount"`     // 最小加注增量
	WagerIntervalID    int               `json:"wager_interval_id"`    // 下注區間編號, 完整加注開新區間
	CommitDeadline     int64             `json:"commit_deadline"`      // 承諾期限 (Seconds)
	RevealDeadline     int64             `json:"reveal_deadline"`      // 揭示期限 (Seconds)
	ActionDeadline     int64             `json:"action_deadline"`      // 動作期限 (Seconds)
	CommunityCards     []holdem.Card     `json:"community_cards"`      // 公共牌
	Pot                *pot.Manager      `json:"pot"`                  // 本手彩池
	Fees               *rake.Accumulator `json:"fees"`                 // 抽水累計器 (跨手)
	TotalFeesCollected int64             `json:"total_fees_collected"` // 已收取抽水總額
}

type SeatState struct {
	PlayerID           string     `json:"player_id"`                      // 玩家 ID
	ChipStack          int64      `json:"chip_stack"`                     // 座位籌碼
	Status             SeatStatus `json:"status"`                         // 本手狀態
	SittingOut         bool       `json:"sitting_out"`                    // 暫離中
	MissedBlinds       int        `json:"missed_blinds"`                  // 積欠大盲數
	PendingLeave       bool       `json:"pending_leave"`                  // 本手結束後離桌
	LastWagerInterval  int        `json:"last_wager_interval"`            // 最後動作的下注區間
	Commitment         []byte     `json:"commitment,omitempty"`           // 洗牌承諾 (sha256)
	RevealedSecret     []byte     `json:"revealed_secret,omitempty"`      // 已揭示的秘密
	EncryptedHoleCards []byte     `json:"encrypted_hole_cards,omitempty"` // 加密底牌
}

// InHand reports whether the seat takes part in the current hand.
func (s *SeatState) InHand() bool {
	return s.Status != SeatStatus_Waiting
}

// Setters
func (t *Table) RefreshUpdateAt() {
	t.UpdateAt = time.Now().Unix()
	t.UpdateSerial++
}

func (t *Table) ConfigureWithSetting(setting TableSetting) {
	t.Meta = setting.Meta

	state := TableState{
		Phase:           TablePhase_Waiting,
		HandNumber:      0,
		StartAt:         UnsetValue,
		Seats:           NewDefaultSeats(setting.Meta.MaxSeatCount),
		DealerSeat:      UnsetValue,
		CurrentBBSeat:   UnsetValue,
		StraddleSeat:    UnsetValue,
		ActionOnSeat:    UnsetValue,
		WagerIntervalID: 0,
		CommitDeadline:  UnsetValue,
		RevealDeadline:  UnsetValue,
		ActionDeadline:  UnsetValue,
		Fees:            rake.NewAccumulator(setting.Meta.RakeBps),
	}
	t.State = &state
}

// Table Getters
func (t Table) GetJSON() (string, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// FindSeatByPlayerID returns the seat index a player occupies, or UnsetValue.
func (t Table) FindSeatByPlayerID(playerID string) int {
	for idx, s := range t.State.Seats {
		if s != nil && s.PlayerID == playerID {
			return idx
		}
	}
	return UnsetValue
}

func (t Table) OccupiedSeats() []*SeatState {
	return funk.Filter(t.State.Seats, func(s *SeatState) bool {
		return s != nil
	}).([]*SeatState)
}

func (t Table) SeatedPlayerIDs() []string {
	return funk.Map(t.OccupiedSeats(), func(s *SeatState) string {
		return s.PlayerID
	}).([]string)
}

// InHandSeatIndexes lists the seats taking part in the current hand, in seat
// order.
func (t Table) InHandSeatIndexes() []int {
	indexes := []int{}
	for idx, s := range t.State.Seats {
		if s != nil && s.InHand() {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}

// NextHandSeatIndexes lists the seats eligible for the next hand: occupied,
// not sitting out, holding chips.
func (t Table) NextHandSeatIndexes() []int {
	indexes := []int{}
	for idx, s := range t.State.Seats {
		if s != nil && !s.SittingOut && s.ChipStack > 0 {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}

// TotalChips sums every seated stack plus the live pot. Wager actions and
// settlement must never change this total (fees and buy-ins aside).
func (t Table) TotalChips() int64 {
	var total int64
	for _, s := range t.OccupiedSeats() {
		total += s.ChipStack
	}
	if t.State.Pot != nil {
		total += t.State.Pot.Total()
	}
	return total
}

func (t Table) countNotFolded() int {
	count := 0
	for _, s := range t.State.Seats {
		if s != nil && (s.Status == SeatStatus_Active || s.Status == SeatStatus_AllIn) {
			count++
		}
	}
	return count
}

func (t Table) countActive() int {
	count := 0
	for _, s := range t.State.Seats {
		if s != nil && s.Status == SeatStatus_Active {
			count++
		}
	}
	return count
}

func (t Table) foldedMask() []bool {
	folded := make([]bool, t.Meta.MaxSeatCount)
	for idx, s := range t.State.Seats {
		// seats outside the hand never reach the pot, mark them folded so a
		// stale entry can not win anything
		folded[idx] = s == nil || (s.Status != SeatStatus_Active && s.Status != SeatStatus_AllIn)
	}
	return folded
}
