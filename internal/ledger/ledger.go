// Package ledger defines the bond and prize ledger the challenge protocol
// settles against, plus an in-memory implementation for the standalone
// daemon and tests. Amounts use exact decimal arithmetic.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned when a lock or transfer exceeds the
// available balance.
var ErrInsufficientFunds = errors.New("ledger: insufficient funds")

// Ledger is the settlement interface consumed by the challenge protocol. The
// protocol only calls mutating methods after all of its own checks pass.
type Ledger interface {
	AvailableBond(account string) decimal.Decimal
	LockBond(account string, amount decimal.Decimal) error
	UnlockBond(account string, amount decimal.Decimal) error
	// PayBondTo atomically slashes a locked bond and credits the recipient.
	PayBondTo(recipient, from string, amount decimal.Decimal) error
	AllocatePrize(amount decimal.Decimal) error
	RewardPrizeTo(recipient string) error
}

type balance struct {
	available decimal.Decimal
	locked    decimal.Decimal
}

// MemoryLedger is a mutex-guarded in-memory ledger.
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[string]*balance
	prize    decimal.Decimal
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{accounts: make(map[string]*balance)}
}

func (l *MemoryLedger) account(id string) *balance {
	b, ok := l.accounts[id]
	if !ok {
		b = &balance{}
		l.accounts[id] = b
	}
	return b
}

// Deposit credits an account's available balance.
func (l *MemoryLedger) Deposit(account string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.account(account)
	b.available = b.available.Add(amount)
}

// AvailableBond returns the unlocked balance of an account.
func (l *MemoryLedger) AvailableBond(account string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account(account).available
}

// LockedBond returns the locked balance of an account.
func (l *MemoryLedger) LockedBond(account string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account(account).locked
}

// LockBond moves amount from available to locked.
func (l *MemoryLedger) LockBond(account string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.account(account)
	if b.available.LessThan(amount) {
		return fmt.Errorf("%w: account %s has %s available, need %s",
			ErrInsufficientFunds, account, b.available, amount)
	}
	b.available = b.available.Sub(amount)
	b.locked = b.locked.Add(amount)
	return nil
}

// UnlockBond moves amount from locked back to available.
func (l *MemoryLedger) UnlockBond(account string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.account(account)
	if b.locked.LessThan(amount) {
		return fmt.Errorf("%w: account %s has %s locked, need %s",
			ErrInsufficientFunds, account, b.locked, amount)
	}
	b.locked = b.locked.Sub(amount)
	b.available = b.available.Add(amount)
	return nil
}

// PayBondTo slashes a locked bond and credits the recipient in one step.
func (l *MemoryLedger) PayBondTo(recipient, from string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.account(from)
	if src.locked.LessThan(amount) {
		return fmt.Errorf("%w: account %s has %s locked, need %s",
			ErrInsufficientFunds, from, src.locked, amount)
	}
	src.locked = src.locked.Sub(amount)
	dst := l.account(recipient)
	dst.available = dst.available.Add(amount)
	return nil
}

// AllocatePrize sets aside the prize pool for the running competition.
func (l *MemoryLedger) AllocatePrize(amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prize = l.prize.Add(amount)
	return nil
}

// RewardPrizeTo pays the entire allocated prize to the recipient.
func (l *MemoryLedger) RewardPrizeTo(recipient string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.account(recipient)
	b.available = b.available.Add(l.prize)
	l.prize = decimal.Zero
	return nil
}

// PrizePool returns the currently allocated prize.
func (l *MemoryLedger) PrizePool() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prize
}
