package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oamaok/esportal-bets/database"
)

// PostgresStore persists the ledger snapshot in a single balances table.
// Selected when DATABASE_URL is configured; the flat-map contract is the
// same as the file store's.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed snapshot store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads every persisted balance. An empty table yields an empty ledger.
func (s *PostgresStore) Load(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT participant_id, balance FROM balances`)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]int64)
	for rows.Next() {
		var participantID string
		var balance int64
		if err := rows.Scan(&participantID, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances[participantID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read balance rows: %w", err)
	}
	return balances, nil
}

// Save replaces the persisted snapshot in one transaction, deleting entries
// that no longer exist in memory
func (s *PostgresStore) Save(ctx context.Context, balances map[string]int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM balances`); err != nil {
		return fmt.Errorf("failed to clear balances: %w", err)
	}

	batch := &pgx.Batch{}
	for participantID, balance := range balances {
		batch.Queue(
			`INSERT INTO balances (participant_id, balance, updated_at) VALUES ($1, $2, NOW())`,
			participantID, balance,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range balances {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to write balance: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush balance batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
