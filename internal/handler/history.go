package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/middleware"
	"github.com/roznoapp/rozno/internal/mood"
	tg "github.com/roznoapp/rozno/internal/telegram"
)

// handleMoodHistory renders recent mood samples grouped by day, newest day
// first.
func (h *Handler) handleMoodHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}
	chatID := update.Message.Chat.ID

	logs, err := h.moodLogs.ListRecent(ctx, profile.ID, config.MoodHistoryLimit)
	if err != nil {
		slog.Error("list mood logs", "error", err, "user_id", profile.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ نشد تاریخچه رو بیارم، دوباره امتحان کن.",
		})
		return
	}

	if len(logs) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "هنوز چیزی ثبت نشده. یه کم باهام حرف بزن تا حال و هوات رو بشناسم! 💬",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 *حال و هوای روزهای اخیر:*\n")

	lastDay := ""
	for _, l := range logs {
		day := l.CreatedAt.Format("2006-01-02")
		if day != lastDay {
			sb.WriteString("\n🗓 " + day + "\n")
			lastDay = day
		}
		fmt.Fprintf(&sb, "%s %s (%s) — %s\n",
			mood.Emoji(l.Mood),
			mood.Label(l.Mood),
			strings.Repeat("●", l.Intensity),
			l.CreatedAt.Format("15:04"),
		)
	}

	if _, err := tg.SendLongMessage(ctx, b, chatID, sb.String()); err != nil {
		slog.Error("send mood history", "error", err, "chat_id", chatID)
	}
}
