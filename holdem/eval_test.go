package holdem

import (
	"testing"

	chehsunliu "github.com/chehsunliu/poker"
	"github.com/stretchr/testify/assert"
)

func cards(t *testing.T, names ...string) []Card {
	t.Helper()
	out := make([]Card, 0, len(names))
	for _, name := range names {
		c, err := ParseCard(name)
		if err != nil {
			t.Fatalf("bad card %q: %v", name, err)
		}
		out = append(out, c)
	}
	return out
}

func TestCardEncoding(t *testing.T) {
	assert.Equal(t, Card(0), NewCard(0, 0))
	assert.Equal(t, "2c", NewCard(0, 0).String())
	assert.Equal(t, "As", NewCard(3, 12).String())
	assert.Equal(t, uint8(12), NewCard(3, 12).Rank())
	assert.Equal(t, uint8(3), NewCard(3, 12).Suit())
	assert.False(t, Card(52).IsValid())

	for i := 0; i < DeckSize; i++ {
		c := Card(i)
		parsed, err := ParseCard(c.String())
		assert.Nil(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestEvaluate7_Categories(t *testing.T) {
	testCases := []struct {
		name       string
		cards      []string
		category   HandCategory
		tiebreaker []uint8
	}{
		{
			name:       "royal flush",
			cards:      []string{"As", "Ks", "Qs", "Js", "Ts", "2c", "3d"},
			category:   RoyalFlush,
			tiebreaker: nil,
		},
		{
			name:       "straight flush",
			cards:      []string{"9h", "8h", "7h", "6h", "5h", "Ac", "Ad"},
			category:   StraightFlush,
			tiebreaker: []uint8{7},
		},
		{
			name:       "steel wheel is the lowest straight flush",
			cards:      []string{"Ad", "2d", "3d", "4d", "5d", "Kc", "Ks"},
			category:   StraightFlush,
			tiebreaker: []uint8{3},
		},
		{
			name:       "quads",
			cards:      []string{"9c", "9d", "9h", "9s", "Kd", "2c", "3h"},
			category:   Quads,
			tiebreaker: []uint8{7, 11},
		},
		{
			name:       "full house",
			cards:      []string{"Tc", "Td", "Th", "4s", "4d", "2c", "7h"},
			category:   FullHouse,
			tiebreaker: []uint8{8, 2},
		},
		{
			name:       "full house picks best trips and pair from seven",
			cards:      []string{"Tc", "Td", "Th", "4s", "4d", "8c", "8h"},
			category:   FullHouse,
			tiebreaker: []uint8{8, 6},
		},
		{
			name:       "flush",
			cards:      []string{"Ac", "Jc", "9c", "6c", "3c", "Kd", "Kh"},
			category:   Flush,
			tiebreaker: []uint8{12, 9, 7, 4, 1},
		},
		{
			name:       "straight",
			cards:      []string{"9c", "8d", "7h", "6s", "5c", "Ac", "Ad"},
			category:   Straight,
			tiebreaker: []uint8{7},
		},
		{
			name:       "wheel straight counts ace low",
			cards:      []string{"Ah", "2c", "3d", "4s", "5h", "Kc", "Qd"},
			category:   Straight,
			tiebreaker: []uint8{3},
		},
		{
			name:       "trips",
			cards:      []string{"7c", "7d", "7h", "Ks", "Qd", "3c", "2h"},
			category:   Trips,
			tiebreaker: []uint8{5, 11, 10},
		},
		{
			name:       "two pair keeps the best two of three pairs",
			cards:      []string{"Ac", "Ad", "8h", "8s", "3d", "3c", "Kh"},
			category:   TwoPair,
			tiebreaker: []uint8{12, 6, 11},
		},
		{
			name:       "pair",
			cards:      []string{"Jc", "Jd", "9h", "7s", "4d", "3c", "2h"},
			category:   OnePair,
			tiebreaker: []uint8{9, 7, 5, 2},
		},
		{
			name:       "high card",
			cards:      []string{"Ac", "Jd", "9h", "7s", "5d", "3c", "2h"},
			category:   HighCard,
			tiebreaker: []uint8{12, 9, 7, 5, 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rank, err := Evaluate7(cards(t, tc.cards...))
			assert.Nil(t, err)
			assert.Equal(t, tc.category, rank.Category, "category")
			assert.Equal(t, tc.tiebreaker, rank.Tiebreakers, "tiebreakers")
		})
	}
}

func TestEvaluate7_RejectsBadInput(t *testing.T) {
	_, err := Evaluate7(cards(t, "Ac", "Kc", "Qc", "Jc", "Tc"))
	assert.Error(t, err)

	_, err = Evaluate7(cards(t, "Ac", "Kc", "Qc", "Jc", "Tc", "9c", "8c", "7c"))
	assert.Error(t, err)

	dup := cards(t, "Ac", "Ac", "Qc", "Jc", "Tc", "9c", "8c")
	_, err = Evaluate7(dup)
	assert.Error(t, err)

	invalid := cards(t, "Ac", "Kc", "Qc", "Jc", "Tc", "9c")
	invalid = append(invalid, Card(52))
	_, err = Evaluate7(invalid)
	assert.Error(t, err)
}

func TestCompare_TotalOrder(t *testing.T) {
	low := HandRank{Category: Straight, Tiebreakers: []uint8{3}}  // wheel
	mid := HandRank{Category: Straight, Tiebreakers: []uint8{11}} // king high
	high := HandRank{Category: Flush, Tiebreakers: []uint8{12, 9, 7, 4, 1}}

	assert.Equal(t, -1, Compare(low, mid))
	assert.Equal(t, 1, Compare(mid, low))
	assert.Equal(t, -1, Compare(mid, high))
	assert.Equal(t, 0, Compare(mid, mid))
}

// Cross-check our ordering against the chehsunliu evaluator over a spread of
// seven-card hands covering every category.
func TestEvaluate7_MatchesReferenceOrdering(t *testing.T) {
	hands := [][]string{
		{"As", "Ks", "Qs", "Js", "Ts", "2c", "3d"},
		{"9h", "8h", "7h", "6h", "5h", "Ac", "Ad"},
		{"Ad", "2d", "3d", "4d", "5d", "Kc", "Ks"},
		{"9c", "9d", "9h", "9s", "Kd", "2c", "3h"},
		{"Tc", "Td", "Th", "4s", "4d", "2c", "7h"},
		{"Ac", "Jc", "9c", "6c", "3c", "Kd", "Kh"},
		{"9c", "8d", "7h", "6s", "5c", "Ac", "Kd"},
		{"Ah", "2c", "3d", "4s", "5h", "Kc", "Qd"},
		{"7c", "7d", "7h", "Ks", "Qd", "3c", "2h"},
		{"Ac", "Ad", "8h", "8s", "3d", "3c", "Kh"},
		{"Jc", "Jd", "9h", "7s", "4d", "3c", "2h"},
		{"Ac", "Jd", "9h", "7s", "5d", "3c", "2h"},
		{"Qc", "Jd", "9h", "7s", "5d", "3c", "2h"},
	}

	type entry struct {
		rank HandRank
		ref  int32
	}
	entries := make([]entry, 0, len(hands))
	for _, names := range hands {
		cs := cards(t, names...)
		rank, err := Evaluate7(cs)
		assert.Nil(t, err)

		refCards := make([]chehsunliu.Card, 0, len(cs))
		for _, c := range cs {
			refCards = append(refCards, chehsunliu.NewCard(c.String()))
		}
		entries = append(entries, entry{rank: rank, ref: chehsunliu.Evaluate(refCards)})
	}

	for i := 0; i < len(entries); i++ {
		for j := 0; j < len(entries); j++ {
			got := Compare(entries[i].rank, entries[j].rank)
			// chehsunliu ranks are inverted: lower value is the better hand.
			want := 0
			if entries[i].ref < entries[j].ref {
				want = 1
			} else if entries[i].ref > entries[j].ref {
				want = -1
			}
			assert.Equalf(t, want, got, "hands %d vs %d", i, j)
		}
	}
}
