package holdem

import (
	"fmt"
	"sort"
)

type HandCategory uint8

const (
	HighCard HandCategory = iota
	OnePair
	TwoPair
	Trips
	Straight
	Flush
	FullHouse
	Quads
	StraightFlush
	RoyalFlush
)

var handCategoryNames = map[HandCategory]string{
	HighCard:      "high_card",
	OnePair:       "pair",
	TwoPair:       "two_pair",
	Trips:         "three_of_a_kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full_house",
	Quads:         "four_of_a_kind",
	StraightFlush: "straight_flush",
	RoyalFlush:    "royal_flush",
}

func (hc HandCategory) String() string {
	if name, ok := handCategoryNames[hc]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(hc))
}

// HandRank is the comparable key for a best five-card hand: the category plus
// high-to-low tiebreaker ranks (0..12).
type HandRank struct {
	Category    HandCategory `json:"category"`
	Tiebreakers []uint8      `json:"tiebreakers"`
}

// Compare returns -1, 0 or 1 ordering a against b. Missing tiebreaker
// positions compare as zero.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}
	l := len(a.Tiebreakers)
	if len(b.Tiebreakers) > l {
		l = len(b.Tiebreakers)
	}
	for i := 0; i < l; i++ {
		var av, bv uint8
		if i < len(a.Tiebreakers) {
			av = a.Tiebreakers[i]
		}
		if i < len(b.Tiebreakers) {
			bv = b.Tiebreakers[i]
		}
		if av == bv {
			continue
		}
		if av < bv {
			return -1
		}
		return 1
	}
	return 0
}

func assertDistinct(cards []Card, label string) error {
	var seen [DeckSize]bool
	for _, c := range cards {
		if !c.IsValid() {
			return fmt.Errorf("holdem: %s contains invalid card id %d", label, uint8(c))
		}
		if seen[c] {
			return fmt.Errorf("holdem: %s contains duplicate card %s", label, c)
		}
		seen[c] = true
	}
	return nil
}

// straightHigh returns the high rank of a straight over five distinct ranks
// sorted descending. The wheel (A-2-3-4-5) reports the five as its high card,
// which is the one case where the ace plays low.
func straightHigh(uniqueRanksDesc []uint8) (uint8, bool) {
	if len(uniqueRanksDesc) != 5 {
		return 0, false
	}
	hasAce := uniqueRanksDesc[0] == 12
	if hasAce &&
		uniqueRanksDesc[1] == 3 && uniqueRanksDesc[2] == 2 &&
		uniqueRanksDesc[3] == 1 && uniqueRanksDesc[4] == 0 {
		return 3, true
	}
	for i := 1; i < len(uniqueRanksDesc); i++ {
		if uniqueRanksDesc[i-1]-1 != uniqueRanksDesc[i] {
			return 0, false
		}
	}
	return uniqueRanksDesc[0], true
}

func evaluate5(cards5 []Card) HandRank {
	isFlush := true
	for i := 1; i < len(cards5); i++ {
		if cards5[i].Suit() != cards5[0].Suit() {
			isFlush = false
			break
		}
	}

	ranks := make([]uint8, 0, 5)
	for _, c := range cards5 {
		ranks = append(ranks, c.Rank())
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })

	counts := map[uint8]uint8{}
	for _, r := range ranks {
		counts[r]++
	}
	uniqueDesc := make([]uint8, 0, len(counts))
	for r := range counts {
		uniqueDesc = append(uniqueDesc, r)
	}
	sort.Slice(uniqueDesc, func(i, j int) bool { return uniqueDesc[i] > uniqueDesc[j] })

	high, isStraight := straightHigh(uniqueDesc)

	type group struct {
		rank  uint8
		count uint8
	}
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	kickers := func() []uint8 {
		ks := make([]uint8, 0, 4)
		for _, g := range groups {
			if g.count == 1 {
				ks = append(ks, g.rank)
			}
		}
		sort.Slice(ks, func(i, j int) bool { return ks[i] > ks[j] })
		return ks
	}

	switch {
	case isStraight && isFlush && high == 12:
		return HandRank{Category: RoyalFlush}
	case isStraight && isFlush:
		return HandRank{Category: StraightFlush, Tiebreakers: []uint8{high}}
	case groups[0].count == 4:
		return HandRank{Category: Quads, Tiebreakers: append([]uint8{groups[0].rank}, kickers()...)}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Tiebreakers: []uint8{groups[0].rank, groups[1].rank}}
	case isFlush:
		return HandRank{Category: Flush, Tiebreakers: ranks}
	case isStraight:
		return HandRank{Category: Straight, Tiebreakers: []uint8{high}}
	case groups[0].count == 3:
		return HandRank{Category: Trips, Tiebreakers: append([]uint8{groups[0].rank}, kickers()...)}
	case groups[0].count == 2 && groups[1].count == 2:
		hiPair, loPair := groups[0].rank, groups[1].rank
		if loPair > hiPair {
			hiPair, loPair = loPair, hiPair
		}
		return HandRank{Category: TwoPair, Tiebreakers: append([]uint8{hiPair, loPair}, kickers()...)}
	case groups[0].count == 2:
		return HandRank{Category: OnePair, Tiebreakers: append([]uint8{groups[0].rank}, kickers()...)}
	}
	return HandRank{Category: HighCard, Tiebreakers: ranks}
}

var combos7Choose5 = [21][5]int{
	{0, 1, 2, 3, 4}, {0, 1, 2, 3, 5}, {0, 1, 2, 3, 6},
	{0, 1, 2, 4, 5}, {0, 1, 2, 4, 6}, {0, 1, 2, 5, 6},
	{0, 1, 3, 4, 5}, {0, 1, 3, 4, 6}, {0, 1, 3, 5, 6},
	{0, 1, 4, 5, 6}, {0, 2, 3, 4, 5}, {0, 2, 3, 4, 6},
	{0, 2, 3, 5, 6}, {0, 2, 4, 5, 6}, {0, 3, 4, 5, 6},
	{1, 2, 3, 4, 5}, {1, 2, 3, 4, 6}, {1, 2, 3, 5, 6},
	{1, 2, 4, 5, 6}, {1, 3, 4, 5, 6}, {2, 3, 4, 5, 6},
}

// Evaluate7 returns the rank of the best five-card hand among the 21 subsets
// of exactly seven distinct cards.
func Evaluate7(cards7 []Card) (HandRank, error) {
	if len(cards7) != 7 {
		return HandRank{}, fmt.Errorf("holdem: expected 7 cards, got %d", len(cards7))
	}
	if err := assertDistinct(cards7, "cards7"); err != nil {
		return HandRank{}, err
	}

	var best *HandRank
	subset := make([]Card, 5)
	for _, idx := range combos7Choose5 {
		for i, k := range idx {
			subset[i] = cards7[k]
		}
		r := evaluate5(subset)
		if best == nil || Compare(r, *best) == 1 {
			tmp := r
			best = &tmp
		}
	}
	return *best, nil
}
