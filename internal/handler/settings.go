package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/middleware"
	tg "github.com/roznoapp/rozno/internal/telegram"
)

func settingsKeyboard() *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(
		tg.ButtonRow(tg.InlineButton("🗑 پاک کردن تاریخچه گفتگو", "confirm_clear_history")),
		tg.ButtonRow(tg.InlineButton("🧠 پاک کردن حافظه", "confirm_clear_memory")),
	)
}

func (h *Handler) settingsText(ctx context.Context, userID string) string {
	text := "⚙️ *تنظیمات*\n\n"

	total, err := h.billingService.TotalCost(ctx, userID)
	if err != nil {
		slog.Error("total cost", "error", err, "user_id", userID)
	} else {
		text += fmt.Sprintf("💵 هزینه کل گفتگوها: $%s\n\n", total.StringFixed(4))
	}

	text += "چی‌کار می‌خوای بکنی؟"
	return text
}

func (h *Handler) handleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        h.settingsText(ctx, profile.ID),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: settingsKeyboard(),
	})
}

func (h *Handler) handleBackToSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, b, update)

	profile := middleware.GetProfile(ctx)
	chatID, ok := callbackChatID(update)
	if profile == nil || !ok {
		return
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   update.CallbackQuery.Message.Message.ID,
		Text:        h.settingsText(ctx, profile.ID),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: settingsKeyboard(),
	})
}

func (h *Handler) handleConfirmClearHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.confirm(ctx, b, update,
		"مطمئنی؟ کل گفتگومون پاک می‌شه و دیگه برنمی‌گرده.",
		"do_clear_history",
	)
}

func (h *Handler) handleConfirmClearMemory(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.confirm(ctx, b, update,
		"مطمئنی؟ هر چی ازت یاد گرفتم فراموش می‌کنم.",
		"do_clear_memory",
	)
}

func (h *Handler) confirm(ctx context.Context, b *bot.Bot, update *models.Update, text, action string) {
	h.answerCallback(ctx, b, update)

	chatID, ok := callbackChatID(update)
	if !ok {
		return
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: update.CallbackQuery.Message.Message.ID,
		Text:      "⚠️ " + text,
		ReplyMarkup: tg.InlineKeyboard(
			tg.ButtonRow(
				tg.InlineButton("✅ آره، پاک کن", action),
				tg.InlineButton("↩️ نه، برگرد", "back_to_settings"),
			),
		),
	})
}

func (h *Handler) handleClearHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, b, update)

	profile := middleware.GetProfile(ctx)
	chatID, ok := callbackChatID(update)
	if profile == nil || !ok {
		return
	}

	conv := h.conversationFor(profile.ID, chatID)
	text := "🗑 تاریخچه پاک شد. از نو شروع می‌کنیم!"
	if err := conv.Clear(ctx); err != nil {
		slog.Error("clear history", "error", err, "user_id", profile.ID)
		text = "❌ نشد تاریخچه رو پاک کنم، دوباره امتحان کن."
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: update.CallbackQuery.Message.Message.ID,
		Text:      text,
	})
}

func (h *Handler) handleClearMemory(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, b, update)

	profile := middleware.GetProfile(ctx)
	chatID, ok := callbackChatID(update)
	if profile == nil || !ok {
		return
	}

	text := "🧠 حافظه پاک شد."
	if err := h.memoryService.Clear(ctx, profile.ID); err != nil {
		slog.Error("clear memory", "error", err, "user_id", profile.ID)
		text = "❌ نشد حافظه رو پاک کنم، دوباره امتحان کن."
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: update.CallbackQuery.Message.Message.ID,
		Text:      text,
	})
}
