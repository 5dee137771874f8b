package dealer

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/feltworks/holdemtable/holdem"
)

// HoleCardCount is the number of hole cards dealt per seat.
const HoleCardCount = 2

const holeCardDomain = "HOLECARDS"

// HoleCardKey derives the per-seat symmetric key protecting that seat's hole
// cards. Only the holder of the seat's secret can re-derive it.
func HoleCardKey(secret []byte, seat int) []byte {
	h := sha256.New()
	h.Write(secret)
	h.Write([]byte(holeCardDomain))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seat))
	h.Write(buf[:])
	return h.Sum(nil)
}

// EncryptHoleCards XORs each card byte with the keyed keystream. The table
// stores only this ciphertext; community cards stay plaintext.
func EncryptHoleCards(key []byte, cards []holdem.Card) []byte {
	out := make([]byte, len(cards))
	for i, c := range cards {
		out[i] = byte(c) ^ key[i%len(key)]
	}
	return out
}

// DecryptHoleCards reverses EncryptHoleCards. A wrong key yields garbage card
// values rather than an error; callers holding the right secret get the
// original cards back.
func DecryptHoleCards(key []byte, ciphertext []byte) []holdem.Card {
	out := make([]holdem.Card, len(ciphertext))
	for i, b := range ciphertext {
		out[i] = holdem.Card(b ^ key[i%len(key)])
	}
	return out
}
