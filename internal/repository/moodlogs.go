package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roznoapp/rozno/internal/domain"
)

type MoodLogs struct {
	db *pgxpool.Pool
}

func NewMoodLogs(db *pgxpool.Pool) *MoodLogs {
	return &MoodLogs{db: db}
}

func (r *MoodLogs) Insert(ctx context.Context, log domain.MoodLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO mood_logs (user_id, mood, intensity, source)
		VALUES ($1, $2, $3, $4)`,
		log.UserID, log.Mood, log.Intensity, log.Source,
	)
	if err != nil {
		return fmt.Errorf("insert mood log: %w", err)
	}
	return nil
}

// ListRecent returns the newest samples first, for the grouped history view.
func (r *MoodLogs) ListRecent(ctx context.Context, userID string, limit int) ([]domain.MoodLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, mood, intensity, source, created_at
		FROM mood_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list mood logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.MoodLog
	for rows.Next() {
		var l domain.MoodLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Mood, &l.Intensity, &l.Source, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mood log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
