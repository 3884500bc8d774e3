package service

import (
	"context"
	"log/slog"

	"github.com/roznoapp/rozno/internal/domain"
	"github.com/shopspring/decimal"
)

type UsageStore interface {
	Insert(ctx context.Context, rec domain.UsageRecord) error
	SumCostByUser(ctx context.Context, userID string) (decimal.Decimal, error)
}

// BillingService accounts token usage per completed turn. Writes are
// best-effort; a failed record never affects the conversation.
type BillingService struct {
	store           UsageStore
	promptPrice     float64
	completionPrice float64
	markupPercent   float64
}

func NewBillingService(store UsageStore, promptPrice, completionPrice, markupPercent float64) *BillingService {
	return &BillingService{
		store:           store,
		promptPrice:     promptPrice,
		completionPrice: completionPrice,
		markupPercent:   markupPercent,
	}
}

// CalculateCost prices a turn from token counts. Prices are USD per 1M
// tokens; markupPercent is applied on top.
func CalculateCost(promptTokens, completionTokens int, promptPrice, completionPrice, markupPercent float64) decimal.Decimal {
	million := decimal.NewFromInt(1_000_000)

	cost := decimal.NewFromInt(int64(promptTokens)).
		Mul(decimal.NewFromFloat(promptPrice)).
		Div(million).
		Add(decimal.NewFromInt(int64(completionTokens)).
			Mul(decimal.NewFromFloat(completionPrice)).
			Div(million))

	if markupPercent > 0 {
		cost = cost.Mul(decimal.NewFromFloat(1 + markupPercent/100))
	}
	return cost.Round(6)
}

// Record stores the usage of one turn. A nil usage (gateway did not report
// any) is skipped.
func (b *BillingService) Record(ctx context.Context, userID string, usage *Usage) {
	if usage == nil {
		return
	}

	cost := CalculateCost(usage.PromptTokens, usage.CompletionTokens, b.promptPrice, b.completionPrice, b.markupPercent)
	err := b.store.Insert(ctx, domain.UsageRecord{
		UserID:           userID,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		Cost:             cost,
	})
	if err != nil {
		slog.Error("record usage", "error", err, "user_id", userID)
	}
}

// TotalCost sums all recorded costs for a user.
func (b *BillingService) TotalCost(ctx context.Context, userID string) (decimal.Decimal, error) {
	return b.store.SumCostByUser(ctx, userID)
}
