package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/domain"
	"github.com/roznoapp/rozno/internal/middleware"
	"github.com/roznoapp/rozno/internal/mood"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}
	chatID := update.Message.Chat.ID

	conv := h.conversationFor(profile.ID, chatID)
	history, err := conv.History(ctx)
	if err != nil {
		slog.Error("load history on start", "error", err, "user_id", profile.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ مشکلی پیش اومد، دوباره امتحان کن.",
		})
		return
	}

	// History always opens with the assistant greeting.
	greeting := history[0].Content
	if history[0].Role != domain.RoleAssistant {
		greeting = mood.TimeGreeting(time.Now())
	}

	var sb strings.Builder
	sb.WriteString(greeting)
	sb.WriteString("\n\n✨ *پیشنهادهای امروز:*\n")
	for _, s := range mood.Suggestions() {
		fmt.Fprintf(&sb, "%s *%s* — %s\n", s.Icon, s.Title, s.Text)
	}
	sb.WriteString("\n📋 *دستورها:*\n")
	sb.WriteString("/mood — تاریخچه حال و هوات\n")
	sb.WriteString("/profile — پروفایلت\n")
	sb.WriteString("/remember — چیزی که باید یادم بمونه\n")
	sb.WriteString("/settings — تنظیمات\n\n")
	sb.WriteString("هر وقت خواستی حرف بزنی، فقط بنویس! 💬")

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	})
}
