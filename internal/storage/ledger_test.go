package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLedgerFlushReward(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ledger := store.Ledger("alice", "crypto")
	if err := ledger.FlushReward(ctx, 12); err != nil {
		t.Fatalf("FlushReward() failed: %v", err)
	}
	if err := ledger.FlushReward(ctx, 8); err != nil {
		t.Fatalf("FlushReward() failed: %v", err)
	}
	if err := store.Ledger("alice", "gems").FlushReward(ctx, 5); err != nil {
		t.Fatalf("FlushReward() failed: %v", err)
	}

	balance, err := store.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance != 25 {
		t.Errorf("Expected balance 25, got %d", balance)
	}

	history, err := store.RewardHistory(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("RewardHistory() failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 rewards, got %d", len(history))
	}
	if history[0].Amount != 5 || history[0].GameID != "gems" {
		t.Errorf("Expected newest reward first, got %+v", history[0])
	}
	for _, e := range history {
		if _, err := uuid.Parse(e.ID); err != nil {
			t.Errorf("reward ID %q is not a UUID: %v", e.ID, err)
		}
	}
}

func TestLedgerBalancesArePerPlayer(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Ledger("alice", "gems").FlushReward(ctx, 3)
	store.Ledger("bob", "gems").FlushReward(ctx, 7)

	if b, _ := store.Balance(ctx, "alice"); b != 3 {
		t.Errorf("alice balance = %d, expected 3", b)
	}
	if b, _ := store.Balance(ctx, "bob"); b != 7 {
		t.Errorf("bob balance = %d, expected 7", b)
	}
	if b, err := store.Balance(ctx, "carol"); err != nil || b != 0 {
		t.Errorf("unknown player balance = %d, %v", b, err)
	}
}

func TestLedgerRejectsBadRewards(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Ledger("alice", "gems").FlushReward(ctx, -1); err == nil {
		t.Error("negative reward should be rejected")
	}
	if err := store.Ledger("", "gems").FlushReward(ctx, 1); err == nil {
		t.Error("reward without player should be rejected")
	}

	history, _ := store.RewardHistory(ctx, "alice", 0)
	if len(history) != 0 {
		t.Errorf("rejected rewards should not be recorded, got %d", len(history))
	}
}

func TestLedgerCanceledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Ledger("alice", "gems").FlushReward(ctx, 4); err == nil {
		t.Error("flush with a canceled context should fail")
	}
	if b, _ := store.Balance(context.Background(), "alice"); b != 0 {
		t.Errorf("balance should be untouched after a failed flush, got %d", b)
	}
}
