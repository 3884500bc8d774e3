package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/domain"
	"github.com/roznoapp/rozno/internal/middleware"
	tg "github.com/roznoapp/rozno/internal/telegram"
)

const rememberUsage = "اینجوری بهم بگو چی یادم بمونه:\n" +
	"`/remember هدف: یادگیری گیتار`\n\n" +
	"و `/remember` خالی، هر چی که یادمه رو نشونت می‌ده."

// handleRemember stores a "key: value" fact or lists the stored ones.
func (h *Handler) handleRemember(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/remember"))
	if args == "" {
		h.showMemory(ctx, b, profile.ID, chatID)
		return
	}

	key, value, ok := strings.Cut(args, ":")
	if !ok {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      rememberUsage,
			ParseMode: models.ParseModeMarkdownV1,
		})
		return
	}

	if err := h.memoryService.Save(ctx, profile.ID, key, value); err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      rememberUsage,
				ParseMode: models.ParseModeMarkdownV1,
			})
			return
		}
		slog.Error("save memory", "error", err, "user_id", profile.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ ذخیره نشد، دوباره امتحان کن.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🧠 یادم موند!",
	})
}

func (h *Handler) showMemory(ctx context.Context, b *bot.Bot, userID string, chatID int64) {
	entries, err := h.memoryService.List(ctx, userID)
	if err != nil {
		slog.Error("list memory", "error", err, "user_id", userID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ نشد حافظه رو بیارم، دوباره امتحان کن.",
		})
		return
	}

	if len(entries) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "هنوز چیزی یادم ندادی!\n\n" + rememberUsage,
			ParseMode: models.ParseModeMarkdownV1,
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("🧠 *چیزهایی که یادمه:*\n\n")
	for _, e := range entries {
		sb.WriteString("• " + e.Key + ": " + e.Value + "\n")
	}

	if _, err := tg.SendLongMessage(ctx, b, chatID, sb.String()); err != nil {
		slog.Error("send memory list", "error", err, "chat_id", chatID)
	}
}
