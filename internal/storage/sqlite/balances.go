package sqlite

import (
	"context"
	"fmt"

	"github.com/kmehta/divvy/internal/storage"
)

// SaveBalances upserts directed balance rows. Rows are written in one
// transaction so a symmetric pair is never half-persisted.
func (s *SQLiteStore) SaveBalances(ctx context.Context, entries []storage.BalanceEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO balances (user_id, counterparty_id, amount) VALUES (?, ?, ?)
			 ON CONFLICT(user_id, counterparty_id) DO UPDATE SET amount = excluded.amount`,
			e.UserID, e.CounterpartyID, e.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListBalances retrieves every stored balance row.
func (s *SQLiteStore) ListBalances(ctx context.Context) ([]storage.BalanceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, counterparty_id, amount FROM balances")
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var entries []storage.BalanceEntry
	for rows.Next() {
		var e storage.BalanceEntry
		var raw string
		if err := rows.Scan(&e.UserID, &e.CounterpartyID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		if e.Amount, err = parseAmount(raw); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return entries, nil
}
