package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDepositAndAvailable(t *testing.T) {
	l := NewMemoryLedger()
	l.Deposit("alice", dec("100"))
	l.Deposit("alice", dec("0.5"))
	if got := l.AvailableBond("alice"); !got.Equal(dec("100.5")) {
		t.Fatalf("available = %s, want 100.5", got)
	}
	if got := l.AvailableBond("bob"); !got.IsZero() {
		t.Fatalf("fresh account available = %s, want 0", got)
	}
}

func TestLockAndUnlockBond(t *testing.T) {
	l := NewMemoryLedger()
	l.Deposit("alice", dec("100"))

	if err := l.LockBond("alice", dec("60")); err != nil {
		t.Fatalf("LockBond: %v", err)
	}
	if got := l.AvailableBond("alice"); !got.Equal(dec("40")) {
		t.Errorf("available after lock = %s, want 40", got)
	}
	if got := l.LockedBond("alice"); !got.Equal(dec("60")) {
		t.Errorf("locked after lock = %s, want 60", got)
	}

	if err := l.UnlockBond("alice", dec("60")); err != nil {
		t.Fatalf("UnlockBond: %v", err)
	}
	if got := l.AvailableBond("alice"); !got.Equal(dec("100")) {
		t.Errorf("available after unlock = %s, want 100", got)
	}
	if got := l.LockedBond("alice"); !got.IsZero() {
		t.Errorf("locked after unlock = %s, want 0", got)
	}
}

func TestLockBondInsufficient(t *testing.T) {
	l := NewMemoryLedger()
	l.Deposit("alice", dec("10"))
	err := l.LockBond("alice", dec("11"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("LockBond = %v, want ErrInsufficientFunds", err)
	}
	if got := l.AvailableBond("alice"); !got.Equal(dec("10")) {
		t.Errorf("failed lock mutated available: %s", got)
	}
}

func TestUnlockBondInsufficient(t *testing.T) {
	l := NewMemoryLedger()
	l.Deposit("alice", dec("10"))
	if err := l.LockBond("alice", dec("5")); err != nil {
		t.Fatalf("LockBond: %v", err)
	}
	if err := l.UnlockBond("alice", dec("6")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("UnlockBond = %v, want ErrInsufficientFunds", err)
	}
}

func TestPayBondTo(t *testing.T) {
	l := NewMemoryLedger()
	l.Deposit("alice", dec("100"))
	if err := l.LockBond("alice", dec("100")); err != nil {
		t.Fatalf("LockBond: %v", err)
	}
	if err := l.PayBondTo("bob", "alice", dec("100")); err != nil {
		t.Fatalf("PayBondTo: %v", err)
	}
	if got := l.LockedBond("alice"); !got.IsZero() {
		t.Errorf("slashed account still holds %s locked", got)
	}
	if got := l.AvailableBond("bob"); !got.Equal(dec("100")) {
		t.Errorf("recipient available = %s, want 100", got)
	}
}

func TestPayBondToInsufficient(t *testing.T) {
	l := NewMemoryLedger()
	l.Deposit("alice", dec("100"))
	// Nothing locked yet, so any slash must fail.
	if err := l.PayBondTo("bob", "alice", dec("1")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("PayBondTo = %v, want ErrInsufficientFunds", err)
	}
	if got := l.AvailableBond("bob"); !got.IsZero() {
		t.Errorf("failed slash credited recipient: %s", got)
	}
}

func TestPrizeAllocationAndReward(t *testing.T) {
	l := NewMemoryLedger()
	if err := l.AllocatePrize(dec("500")); err != nil {
		t.Fatalf("AllocatePrize: %v", err)
	}
	if err := l.AllocatePrize(dec("250")); err != nil {
		t.Fatalf("AllocatePrize: %v", err)
	}
	if got := l.PrizePool(); !got.Equal(dec("750")) {
		t.Fatalf("prize pool = %s, want 750", got)
	}

	if err := l.RewardPrizeTo("carol"); err != nil {
		t.Fatalf("RewardPrizeTo: %v", err)
	}
	if got := l.AvailableBond("carol"); !got.Equal(dec("750")) {
		t.Errorf("winner available = %s, want 750", got)
	}
	if got := l.PrizePool(); !got.IsZero() {
		t.Errorf("prize pool after reward = %s, want 0", got)
	}
}
