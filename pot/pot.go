package pot

import (
	"sort"

	"github.com/decred/slog"

	"github.com/feltworks/holdemtable/holdem"
)

// Pot is one contested tier: its chip amount and the seats that may win it.
type Pot struct {
	Amount        int64 `json:"amount"`
	EligibleSeats []int `json:"eligible_seats"`
}

// Manager tracks per-street and per-hand wagers for every seat of one hand.
// It only moves numbers; chip stacks are debited by the caller.
type Manager struct {
	NumSeats    int     `json:"num_seats"`
	CurrentBets []int64 `json:"current_bets"` // this street
	TotalBets   []int64 `json:"total_bets"`   // whole hand

	log slog.Logger
}

func NewManager(numSeats int) *Manager {
	return &Manager{
		NumSeats:    numSeats,
		CurrentBets: make([]int64, numSeats),
		TotalBets:   make([]int64, numSeats),
		log:         slog.Disabled,
	}
}

func (m *Manager) SetLogger(log slog.Logger) {
	m.log = log
}

// AddBet records amount wagered by seat on the current street.
func (m *Manager) AddBet(seat int, amount int64) {
	m.CurrentBets[seat] += amount
	m.TotalBets[seat] += amount
}

// AddDeadBet records chips that go straight into the pot without opening
// live action: antes and owed blinds. The seat keeps pot equity for them but
// nobody has to match them.
func (m *Manager) AddDeadBet(seat int, amount int64) {
	m.TotalBets[seat] += amount
}

// MaxCurrentBet is the highest street commitment so far.
func (m *Manager) MaxCurrentBet() int64 {
	var max int64
	for _, bet := range m.CurrentBets {
		if bet > max {
			max = bet
		}
	}
	return max
}

// CallAmount is what seat still owes to match the street's highest bet.
func (m *Manager) CallAmount(seat int) int64 {
	owed := m.MaxCurrentBet() - m.CurrentBets[seat]
	if owed < 0 {
		return 0
	}
	return owed
}

// CollectBets closes the street: street bets move into the shared pot
// (already reflected in TotalBets) and the street counters reset.
func (m *Manager) CollectBets() {
	for i := range m.CurrentBets {
		m.CurrentBets[i] = 0
	}
}

// Total is the whole-hand pot across all tiers.
func (m *Manager) Total() int64 {
	var total int64
	for _, bet := range m.TotalBets {
		total += bet
	}
	return total
}

// ReturnUncalled removes the uncalled portion of the street's highest bet and
// reports which seat should get those chips back. Returns (-1, 0) when every
// bet is matched.
func (m *Manager) ReturnUncalled() (seat int, amount int64) {
	max := m.MaxCurrentBet()
	if max == 0 {
		return -1, 0
	}

	maxSeat := -1
	var second int64
	for i, bet := range m.CurrentBets {
		if bet == max {
			if maxSeat != -1 {
				return -1, 0 // max is matched
			}
			maxSeat = i
			continue
		}
		if bet > second {
			second = bet
		}
	}
	if maxSeat == -1 || max == second {
		return -1, 0
	}

	excess := max - second
	m.CurrentBets[maxSeat] -= excess
	m.TotalBets[maxSeat] -= excess
	return maxSeat, excess
}

// Build slices TotalBets into main and side pots over the sorted distinct
// investment thresholds. A folded seat's chips stay in the pots it funded but
// the seat is never eligible to win. Adjacent tiers with identical
// eligibility merge into one pot.
func (m *Manager) Build(folded []bool) []Pot {
	type rem struct {
		seat     int
		amount   int64
		eligible bool
	}
	remaining := make([]rem, 0, m.NumSeats)
	for i := 0; i < m.NumSeats; i++ {
		if m.TotalBets[i] == 0 {
			continue
		}
		remaining = append(remaining, rem{seat: i, amount: m.TotalBets[i], eligible: !folded[i]})
	}

	tiers := []Pot{}
	for len(remaining) > 0 {
		min := remaining[0].amount
		for _, r := range remaining[1:] {
			if r.amount < min {
				min = r.amount
			}
		}

		tier := Pot{Amount: min * int64(len(remaining))}
		for _, r := range remaining {
			if r.eligible {
				tier.EligibleSeats = append(tier.EligibleSeats, r.seat)
			}
		}
		sort.Ints(tier.EligibleSeats)
		tiers = append(tiers, tier)

		next := remaining[:0]
		for _, r := range remaining {
			r.amount -= min
			if r.amount > 0 {
				next = append(next, r)
			}
		}
		remaining = next
	}

	merged := []Pot{}
	for _, tier := range tiers {
		if len(merged) > 0 && sameSeats(merged[len(merged)-1].EligibleSeats, tier.EligibleSeats) {
			merged[len(merged)-1].Amount += tier.Amount
			continue
		}
		merged = append(merged, Pot{
			Amount:        tier.Amount,
			EligibleSeats: append([]int(nil), tier.EligibleSeats...),
		})
	}
	return merged
}

// Distribute resolves every pot to per-seat payouts. A pot with a single
// eligible seat goes to it without evaluation (fold wins and capped side
// pots); otherwise the best HandRank among the eligible seats wins, ties
// split evenly and the indivisible remainder goes to the first winner in seat
// order starting left of the dealer.
func (m *Manager) Distribute(pots []Pot, ranks map[int]holdem.HandRank, dealerSeat int) map[int]int64 {
	payouts := make(map[int]int64)

	for potIdx, p := range pots {
		if p.Amount == 0 || len(p.EligibleSeats) == 0 {
			continue
		}

		if len(p.EligibleSeats) == 1 {
			payouts[p.EligibleSeats[0]] += p.Amount
			continue
		}

		var best *holdem.HandRank
		winners := []int{}
		for _, seat := range p.EligibleSeats {
			rank, ok := ranks[seat]
			if !ok {
				m.log.Errorf("pot %d: seat %d eligible at showdown without a hand rank", potIdx, seat)
				continue
			}
			if best == nil || holdem.Compare(rank, *best) == 1 {
				tmp := rank
				best = &tmp
				winners = []int{seat}
			} else if holdem.Compare(rank, *best) == 0 {
				winners = append(winners, seat)
			}
		}
		if len(winners) == 0 {
			m.log.Errorf("pot %d: no winners among eligible seats %v", potIdx, p.EligibleSeats)
			continue
		}

		sortSeatsFromLeftOfDealer(winners, dealerSeat, m.NumSeats)
		share := p.Amount / int64(len(winners))
		remainder := p.Amount % int64(len(winners))
		for i, seat := range winners {
			payouts[seat] += share
			if i == 0 {
				payouts[seat] += remainder
			}
		}
	}
	return payouts
}

// sortSeatsFromLeftOfDealer orders seats clockwise starting at the seat
// immediately left of the dealer, the conventional first actor.
func sortSeatsFromLeftOfDealer(seats []int, dealerSeat, numSeats int) {
	order := func(seat int) int {
		return ((seat - dealerSeat - 1) % numSeats + numSeats) % numSeats
	}
	sort.Slice(seats, func(i, j int) bool {
		return order(seats[i]) < order(seats[j])
	})
}

func sameSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
