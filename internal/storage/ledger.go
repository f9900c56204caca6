package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tap-match/internal/match3"
)

// DefaultPlayer owns the ledger of local play when no user name is set.
const DefaultPlayer = "local"

// RewardEntry is one flushed session reward.
type RewardEntry struct {
	ID        string
	Player    string
	GameID    string
	Amount    int
	CreatedAt time.Time
}

// Ledger credits session rewards of one player and game.
type Ledger struct {
	store  *Store
	player string
	gameID string
}

var _ match3.RewardLedger = (*Ledger)(nil)

// Ledger returns the reward ledger of a player for a game.
func (s *Store) Ledger(player, gameID string) *Ledger {
	return &Ledger{store: s, player: player, gameID: gameID}
}

// FlushReward records amount and adds it to the player's balance in one
// transaction.
func (l *Ledger) FlushReward(ctx context.Context, amount int) error {
	_, err := l.store.Credit(ctx, l.player, l.gameID, amount)
	return err
}

// Credit records a reward and returns its entry ID.
func (s *Store) Credit(ctx context.Context, player, gameID string, amount int) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("storage: negative reward %d", amount)
	}
	if player == "" {
		return "", fmt.Errorf("storage: reward without player")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO rewards (id, player, game_id, amount) VALUES (?, ?, ?, ?)",
		id, player, gameID, amount,
	); err != nil {
		return "", fmt.Errorf("storage: cannot record reward: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO balances (player, balance) VALUES (?, ?)
		 ON CONFLICT(player) DO UPDATE SET
		   balance = balance + excluded.balance,
		   updated_at = CURRENT_TIMESTAMP`,
		player, amount,
	); err != nil {
		return "", fmt.Errorf("storage: cannot update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit reward: %w", err)
	}
	return id, nil
}

// Balance returns a player's accumulated reward, 0 for unknown players.
func (s *Store) Balance(ctx context.Context, player string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		"SELECT balance FROM balances WHERE player = ?",
		player,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query balance: %w", err)
	}
	return balance, nil
}

// RewardHistory returns a player's most recent rewards, newest first.
// A non-positive limit means 20.
func (s *Store) RewardHistory(ctx context.Context, player string, limit int) ([]RewardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, game_id, amount, created_at
		 FROM rewards
		 WHERE player = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query rewards: %w", err)
	}
	defer rows.Close()

	var entries []RewardEntry
	for rows.Next() {
		var e RewardEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Player, &e.GameID, &e.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}
