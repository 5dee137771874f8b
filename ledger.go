package holdemtable

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"
)

var (
	ErrLedgerInsufficientBalance = errors.New("ledger: insufficient balance")
)

// ChipLedger moves real value in and out of the table: buy-ins and top-ups
// debit it, cash-outs and fees credit it. The engine's per-seat chip stacks
// remain the durable record of chips in play; the ledger only sees value
// crossing the table boundary.
type ChipLedger interface {
	Debit(playerID string, amount int64) error
	Credit(playerID string, amount int64) error
	Balance(playerID string) (int64, error)
}

// MemoryChipLedger is an in-process ChipLedger for tests and local play.
type MemoryChipLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryChipLedger() *MemoryChipLedger {
	return &MemoryChipLedger{
		balances: make(map[string]int64),
	}
}

// Deposit seeds an account balance.
func (l *MemoryChipLedger) Deposit(playerID string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[playerID] += amount
}

func (l *MemoryChipLedger) Debit(playerID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[playerID] < amount {
		return ErrLedgerInsufficientBalance
	}
	l.balances[playerID] -= amount
	return nil
}

func (l *MemoryChipLedger) Credit(playerID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[playerID] += amount
	return nil
}

func (l *MemoryChipLedger) Balance(playerID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[playerID], nil
}

// nopChipLedger accepts every movement. It is the default when no external
// ledger is wired in.
type nopChipLedger struct{}

func (nopChipLedger) Debit(string, int64) error     { return nil }
func (nopChipLedger) Credit(string, int64) error    { return nil }
func (nopChipLedger) Balance(string) (int64, error) { return 0, nil }

// EntropySource supplies the post-commit hint folded into the shuffle seed.
// It must be unpredictable at commit time; a block height or hash qualifies,
// the wall clock does not.
type EntropySource interface {
	HeightHint() uint64
}

type EntropySourceFunc func() uint64

func (f EntropySourceFunc) HeightHint() uint64 { return f() }

func systemEntropy() EntropySource {
	return EntropySourceFunc(func() uint64 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0
		}
		return binary.BigEndian.Uint64(buf[:])
	})
}
