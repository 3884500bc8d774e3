package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/domain"
	"github.com/roznoapp/rozno/internal/service"
)

type ctxKey string

const ProfileKey ctxKey = "profile"

// GetProfile extracts the loaded profile from context.
func GetProfile(ctx context.Context) *domain.Profile {
	p, ok := ctx.Value(ProfileKey).(*domain.Profile)
	if !ok {
		return nil
	}
	return p
}

// ProfileLoader returns middleware that resolves the sender's profile and
// stores it in context for downstream handlers.
func ProfileLoader(profiles *service.ProfileService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			profile, _, err := profiles.FindOrCreate(ctx, from.ID, from.FirstName)
			if err == nil && profile != nil {
				ctx = context.WithValue(ctx, ProfileKey, profile)
			}

			next(ctx, b, update)
		}
	}
}
