package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/middleware"
)

const profileUsage = "برای ویرایش پروفایل بنویس:\n" +
	"`/profile نام <اسمت>`\n" +
	"`/profile شغل <شغلت>`\n" +
	"`/profile علاقه‌ها <مثلاً کتاب، موسیقی>`\n" +
	"`/profile درباره <چند کلمه درباره خودت>`"

// handleProfile shows the profile or edits one field of it.
func (h *Handler) handleProfile(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/profile"))
	if args == "" {
		h.showProfile(ctx, b, chatID)
		return
	}

	field, value, ok := strings.Cut(args, " ")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      profileUsage,
			ParseMode: models.ParseModeMarkdownV1,
		})
		return
	}

	name := profile.DisplayName
	profession := profile.Profession
	bio := profile.Bio
	interestsRaw := strings.Join(profile.Interests, "، ")

	switch field {
	case "نام":
		name = value
	case "شغل":
		profession = value
	case "علاقه‌ها", "علاقه":
		interestsRaw = value
	case "درباره":
		bio = value
	default:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      profileUsage,
			ParseMode: models.ParseModeMarkdownV1,
		})
		return
	}

	if err := h.profileService.Save(ctx, profile, name, profession, bio, interestsRaw); err != nil {
		slog.Error("save profile", "error", err, "user_id", profile.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ ذخیره نشد، دوباره امتحان کن.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ پروفایلت به‌روز شد!",
	})
}

func (h *Handler) showProfile(ctx context.Context, b *bot.Bot, chatID int64) {
	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}

	orDash := func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	}

	var sb strings.Builder
	sb.WriteString("👤 *پروفایل تو:*\n\n")
	sb.WriteString("اسم: " + orDash(profile.DisplayName) + "\n")
	sb.WriteString("شغل: " + orDash(profile.Profession) + "\n")
	sb.WriteString("علاقه‌مندی‌ها: " + orDash(strings.Join(profile.Interests, "، ")) + "\n")
	sb.WriteString("درباره: " + orDash(profile.Bio) + "\n\n")
	sb.WriteString(profileUsage)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	})
}
