package dealer

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/feltworks/holdemtable/holdem"
)

// SeedSize is the size of the shuffle seed in bytes.
const SeedSize = 32

// DeriveSeed folds every revealed secret (in seat order), both phase
// deadlines and a chain-derived hint into a single 256-bit shuffle seed.
// The hint must come from a source players cannot predict at commit time;
// wall-clock timestamps are not acceptable here.
func DeriveSeed(secrets [][]byte, commitDeadline, revealDeadline int64, heightHint uint64) [SeedSize]byte {
	h := sha256.New()
	for _, secret := range secrets {
		h.Write(secret)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(commitDeadline))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(revealDeadline))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], heightHint)
	h.Write(buf[:])

	var seed [SeedSize]byte
	copy(seed[:], h.Sum(nil))
	return seed
}

// drbg expands a seed counter-mode: each call hashes seed||counter and hands
// out the digest 8 bytes at a time.
type drbg struct {
	seed    [SeedSize]byte
	counter uint64
	block   [sha256.Size]byte
	offset  int
}

func newDRBG(seed [SeedSize]byte) *drbg {
	d := &drbg{seed: seed}
	d.refill()
	return d
}

func (d *drbg) refill() {
	var buf [SeedSize + 8]byte
	copy(buf[:], d.seed[:])
	binary.BigEndian.PutUint64(buf[SeedSize:], d.counter)
	d.counter++
	d.block = sha256.Sum256(buf[:])
	d.offset = 0
}

func (d *drbg) nextUint64() uint64 {
	if d.offset+8 > len(d.block) {
		d.refill()
	}
	v := binary.BigEndian.Uint64(d.block[d.offset : d.offset+8])
	d.offset += 8
	return v
}

// uint64n returns a uniform value in [0, n) via rejection sampling, so swap
// indexes carry no modulo bias.
func (d *drbg) uint64n(n uint64) uint64 {
	limit := (^uint64(0) / n) * n
	for {
		v := d.nextUint64()
		if v < limit {
			return v % n
		}
	}
}

// ShuffledDeck runs a Fisher-Yates shuffle of the 52-card deck driven purely
// by the seed. The same seed always yields the same deck.
func ShuffledDeck(seed [SeedSize]byte) []holdem.Card {
	deck := make([]holdem.Card, holdem.DeckSize)
	for i := range deck {
		deck[i] = holdem.Card(i)
	}

	rng := newDRBG(seed)
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.uint64n(uint64(i + 1))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
