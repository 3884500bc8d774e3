package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roznoapp/rozno/internal/domain"
	"github.com/shopspring/decimal"
)

type Usage struct {
	db *pgxpool.Pool
}

func NewUsage(db *pgxpool.Pool) *Usage {
	return &Usage{db: db}
}

func (r *Usage) Insert(ctx context.Context, rec domain.UsageRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO usage_records (user_id, prompt_tokens, completion_tokens, cost)
		VALUES ($1, $2, $3, $4::numeric)`,
		rec.UserID, rec.PromptTokens, rec.CompletionTokens, rec.Cost.String(),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

func (r *Usage) SumCostByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total string
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(cost), 0)::text FROM usage_records WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum usage cost: %w", err)
	}

	sum, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse usage cost: %w", err)
	}
	return sum, nil
}
