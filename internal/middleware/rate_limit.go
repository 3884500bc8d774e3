package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/config"
)

// RateLimiter tracks per-chat message counts within a sliding minute.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[int64]*window
}

type window struct {
	count   int
	startAt time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[int64]*window)}
}

// Allow increments the chat's counter and reports whether it stays within
// the per-minute limit.
func (r *RateLimiter) Allow(chatID int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[chatID]
	if !ok || now.Sub(w.startAt) >= time.Minute {
		r.windows[chatID] = &window{count: 1, startAt: now}
		return true
	}
	w.count++
	return w.count <= config.RateLimitPerMinute
}

// Prune drops windows that expired before now. Called periodically so idle
// chats do not accumulate.
func (r *RateLimiter) Prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for chatID, w := range r.windows {
		if now.Sub(w.startAt) >= time.Minute {
			delete(r.windows, chatID)
		}
	}
}

// RateLimit returns middleware that enforces per-minute rate limits.
func RateLimit(limiter *RateLimiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !limiter.Allow(chatID, time.Now()) {
				slog.Debug("rate limited", "chat_id", chatID)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ یه کم آروم‌تر! چند لحظه صبر کن و دوباره بنویس.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
