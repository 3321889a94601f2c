package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInsufficientFunds is returned when a debit exceeds the current balance
var ErrInsufficientFunds = errors.New("insufficient funds")

// LedgerEntry is one participant's balance, used for leaderboards and snapshots
type LedgerEntry struct {
	ParticipantID string
	Balance       int64
}

// Ledger holds the virtual currency balance of every known participant.
// Balances are created lazily at the configured starting balance on first
// reference. Individual operations are atomic; compound sequences such as
// refund-then-debit are serialized by the tracker's lock on top of this.
type Ledger struct {
	mu              sync.Mutex
	balances        map[string]int64
	startingBalance int64
}

// NewLedger creates an empty ledger
func NewLedger(startingBalance int64) *Ledger {
	return &Ledger{
		balances:        make(map[string]int64),
		startingBalance: startingBalance,
	}
}

// Balance returns the participant's balance, initializing it on first reference
func (l *Ledger) Balance(participantID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(participantID)
}

// balance initializes and reads an entry. Callers hold l.mu.
func (l *Ledger) balance(participantID string) int64 {
	if _, ok := l.balances[participantID]; !ok {
		l.balances[participantID] = l.startingBalance
	}
	return l.balances[participantID]
}

// Credit adds amount to the participant's balance and returns the new balance
func (l *Ledger) Credit(participantID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must not be negative, got %d", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balance(participantID) + amount
	l.balances[participantID] = balance
	return balance, nil
}

// Debit subtracts amount from the participant's balance. It fails with
// ErrInsufficientFunds and leaves the balance untouched when amount exceeds
// the current balance.
func (l *Ledger) Debit(participantID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount must not be negative, got %d", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balance(participantID)
	if amount > balance {
		return balance, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, amount)
	}

	balance -= amount
	l.balances[participantID] = balance
	return balance, nil
}

// ApplyStipend adds delta to every known participant and returns how many
// entries were credited
func (l *Ledger) ApplyStipend(delta int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id := range l.balances {
		l.balances[id] += delta
	}
	return len(l.balances)
}

// Snapshot returns a copy of the full balance map
func (l *Ledger) Snapshot() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make(map[string]int64, len(l.balances))
	for id, balance := range l.balances {
		snapshot[id] = balance
	}
	return snapshot
}

// Restore replaces the ledger contents with a persisted snapshot
func (l *Ledger) Restore(balances map[string]int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = make(map[string]int64, len(balances))
	for id, balance := range balances {
		l.balances[id] = balance
	}
}

// Top returns up to n entries ordered by descending balance
func (l *Ledger) Top(n int) []LedgerEntry {
	entries := l.sorted(func(a, b LedgerEntry) bool {
		if a.Balance != b.Balance {
			return a.Balance > b.Balance
		}
		return a.ParticipantID < b.ParticipantID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Bottom returns up to n entries ordered by ascending balance
func (l *Ledger) Bottom(n int) []LedgerEntry {
	entries := l.sorted(func(a, b LedgerEntry) bool {
		if a.Balance != b.Balance {
			return a.Balance < b.Balance
		}
		return a.ParticipantID < b.ParticipantID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (l *Ledger) sorted(less func(a, b LedgerEntry) bool) []LedgerEntry {
	l.mu.Lock()
	entries := make([]LedgerEntry, 0, len(l.balances))
	for id, balance := range l.balances {
		entries = append(entries, LedgerEntry{ParticipantID: id, Balance: balance})
	}
	l.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
	return entries
}
