package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mood", bot.MatchTypePrefix, h.handleMoodHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/profile", bot.MatchTypePrefix, h.handleProfile)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/remember", bot.MatchTypePrefix, h.handleRemember)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypePrefix, h.handleSettings)

	// Settings callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "confirm_clear_history", bot.MatchTypeExact, h.handleConfirmClearHistory)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "do_clear_history", bot.MatchTypeExact, h.handleClearHistory)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "confirm_clear_memory", bot.MatchTypeExact, h.handleConfirmClearMemory)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "do_clear_memory", bot.MatchTypeExact, h.handleClearMemory)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "back_to_settings", bot.MatchTypeExact, h.handleBackToSettings)
}

// answerCallback acknowledges a callback query so the client stops its
// loading spinner.
func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

// callbackChatID resolves the chat a callback originated in.
func callbackChatID(update *models.Update) (int64, bool) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return 0, false
	}
	return update.CallbackQuery.Message.Message.Chat.ID, true
}
