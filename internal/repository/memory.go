package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roznoapp/rozno/internal/domain"
)

type Memory struct {
	db *pgxpool.Pool
}

func NewMemory(db *pgxpool.Pool) *Memory {
	return &Memory{db: db}
}

// Upsert inserts a keyed fact or replaces its value if the key already exists
// for the user.
func (r *Memory) Upsert(ctx context.Context, userID, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_memory (user_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert memory: %w", err)
	}
	return nil
}

func (r *Memory) ListByUser(ctx context.Context, userID string) ([]domain.MemoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, key, value, updated_at
		FROM user_memory
		WHERE user_id = $1
		ORDER BY key`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memory: %w", err)
	}
	defer rows.Close()

	var entries []domain.MemoryEntry
	for rows.Next() {
		var e domain.MemoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan memory entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Memory) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_memory WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}
