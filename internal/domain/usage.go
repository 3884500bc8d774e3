package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageRecord tracks token consumption and cost for one completed turn.
type UsageRecord struct {
	ID               int64
	UserID           string
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
	CreatedAt        time.Time
}
