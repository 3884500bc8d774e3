package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roznoapp/rozno/internal/domain"
)

// Messages is the append-only chat message store.
type Messages struct {
	db *pgxpool.Pool
}

func NewMessages(db *pgxpool.Pool) *Messages {
	return &Messages{db: db}
}

func (r *Messages) Insert(ctx context.Context, m domain.Message) error {
	var mood *string
	if m.Mood != "" {
		mood = &m.Mood
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_messages (id, user_id, session_id, role, content, mood, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.UserID, m.SessionID, m.Role, m.Content, mood, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByUser returns all stored messages for a user in creation order, which
// reproduces the original submission order on reload.
func (r *Messages) ListByUser(ctx context.Context, userID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, session_id, role, content, COALESCE(mood, ''), created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.SessionID, &m.Role, &m.Content, &m.Mood, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *Messages) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}
