package holdem

import "fmt"

// Card encodes a playing card as suit*13 + rank, where rank 0..12 maps to
// 2..A and suit 0..3 maps to club/diamond/heart/spade.
type Card uint8

const (
	NumRanks = 13
	NumSuits = 4
	DeckSize = NumRanks * NumSuits
)

var (
	rankSymbols = "23456789TJQKA"
	suitSymbols = "cdhs"
)

func NewCard(suit, rank uint8) Card {
	return Card(suit*NumRanks + rank)
}

func (c Card) Rank() uint8 {
	return uint8(c) % NumRanks
}

func (c Card) Suit() uint8 {
	return uint8(c) / NumRanks
}

func (c Card) IsValid() bool {
	return uint8(c) < DeckSize
}

func (c Card) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("card(%d)", uint8(c))
	}
	return string([]byte{rankSymbols[c.Rank()], suitSymbols[c.Suit()]})
}

// ParseCard parses the two-character form produced by String, e.g. "Ah".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("holdem: invalid card %q", s)
	}
	rank := -1
	for i := 0; i < len(rankSymbols); i++ {
		if rankSymbols[i] == s[0] {
			rank = i
			break
		}
	}
	suit := -1
	for i := 0; i < len(suitSymbols); i++ {
		if suitSymbols[i] == s[1] {
			suit = i
			break
		}
	}
	if rank < 0 || suit < 0 {
		return 0, fmt.Errorf("holdem: invalid card %q", s)
	}
	return NewCard(uint8(suit), uint8(rank)), nil
}
