package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kmehta/divvy/internal/models"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = now
	}
	if settlement.UpdatedAt == 0 {
		settlement.UpdatedAt = now
	}

	var method, notes interface{}
	if settlement.Method != "" {
		method = string(settlement.Method)
	}
	if settlement.Notes != "" {
		notes = settlement.Notes
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, from_user_id, to_user_id, amount, status, method, notes, created_at, updated_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.FromUserID, settlement.ToUserID, settlement.Amount.String(),
		string(settlement.Status), method, notes,
		settlement.CreatedAt, settlement.UpdatedAt, settlement.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var method, notes sql.NullString
	var amount, status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, from_user_id, to_user_id, amount, status, method, notes, created_at, updated_at, completed_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	).Scan(&settlement.ID, &settlement.FromUserID, &settlement.ToUserID, &amount,
		&status, &method, &notes,
		&settlement.CreatedAt, &settlement.UpdatedAt, &settlement.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if settlement.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	settlement.Status = models.SettlementStatus(status)
	if method.Valid {
		settlement.Method = models.SettlementMethod(method.String)
	}
	if notes.Valid {
		settlement.Notes = notes.String
	}

	return settlement, nil
}

// UpdateSettlement rewrites an existing settlement's mutable fields.
func (s *SQLiteStore) UpdateSettlement(ctx context.Context, settlement *models.Settlement) error {
	var method, notes interface{}
	if settlement.Method != "" {
		method = string(settlement.Method)
	}
	if settlement.Notes != "" {
		notes = settlement.Notes
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE settlements SET amount = ?, status = ?, method = ?, notes = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		settlement.Amount.String(), string(settlement.Status), method, notes,
		settlement.UpdatedAt, settlement.CompletedAt, settlement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("settlement %s: %w", settlement.ID, models.ErrNotFound)
	}

	return nil
}

// ListSettlementsByUser retrieves settlements the user is a party to, newest first.
func (s *SQLiteStore) ListSettlementsByUser(ctx context.Context, userID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM settlements WHERE from_user_id = ? OR to_user_id = ? ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan settlement id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	settlements := make([]*models.Settlement, 0, len(ids))
	for _, id := range ids {
		settlement, err := s.GetSettlement(ctx, id)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}
	return settlements, nil
}
