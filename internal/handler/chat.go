package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/domain"
	"github.com/roznoapp/rozno/internal/middleware"
	"github.com/roznoapp/rozno/internal/service"
	tg "github.com/roznoapp/rozno/internal/telegram"
)

func (h *Handler) conversationFor(userID string, chatID int64) *service.Conversation {
	return h.conversations.Conversation(service.ConversationContext{
		UserID:    userID,
		SessionID: strconv.FormatInt(chatID, 10),
	})
}

// HandleTextPrivate drives one chat turn: submit the text, stream the reply
// into a placeholder message with throttled edits, and replace the
// placeholder with the final text.
func (h *Handler) HandleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	profile := middleware.GetProfile(ctx)
	if profile == nil {
		return
	}
	chatID := msg.Chat.ID

	conv := h.conversationFor(profile.ID, chatID)

	// Warm the in-memory log on the first turn after a restart.
	if len(conv.Messages()) == 0 {
		if _, err := conv.History(ctx); err != nil {
			slog.Error("load history before turn", "error", err, "user_id", profile.ID)
		}
	}

	listener := &chatListener{ctx: ctx, bot: b, chatID: chatID}
	final, err := conv.Submit(ctx, msg.Text, listener)
	if err != nil {
		h.reportTurnError(ctx, b, chatID, err)
		return
	}

	listener.showFinal(final.Content)
}

func (h *Handler) reportTurnError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return
	case errors.Is(err, domain.ErrActiveRequest):
		text = "⏳ هنوز دارم به پیام قبلیت جواب می‌دم، یه لحظه صبر کن."
	case errors.Is(err, domain.ErrRateLimited):
		text = "⏳ سرم خیلی شلوغه! چند لحظه دیگه دوباره بنویس."
	case errors.Is(err, domain.ErrQuotaExhausted):
		text = "💳 اعتبار هوش مصنوعی تموم شده. لطفاً بعداً دوباره امتحان کن."
	case errors.Is(err, context.DeadlineExceeded):
		text = "⏳ جواب خیلی طول کشید و قطع شد. دوباره امتحان کن."
	default:
		slog.Error("chat turn failed", "error", err, "chat_id", chatID)
		text = "😔 الان نمی‌تونم جواب بدم، یه مشکل فنی پیش اومده. دوباره امتحان کن."
	}

	// Any partial text already streamed stays visible; the error arrives as
	// its own message below it.
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}

// chatListener renders conversation mutations into the Telegram chat. All
// callbacks arrive on the submitting goroutine, so no locking is needed.
type chatListener struct {
	ctx    context.Context
	bot    *bot.Bot
	chatID int64

	stopTyping    context.CancelFunc
	placeholderID int
	lastEdit      time.Time
	lastShown     string
}

func (l *chatListener) MessageAppended(msg domain.Message) {
	// The user's own message is already visible in the chat.
}

func (l *chatListener) TypingChanged(active bool) {
	if active {
		l.stopTyping = tg.StartTyping(l.ctx, l.bot, l.chatID)
		return
	}
	if l.stopTyping != nil {
		l.stopTyping()
		l.stopTyping = nil
	}
}

func (l *chatListener) AssistantUpdated(msg domain.Message) {
	if l.placeholderID == 0 {
		sent, err := l.bot.SendMessage(l.ctx, &bot.SendMessageParams{
			ChatID: l.chatID,
			Text:   msg.Content,
		})
		if err != nil {
			slog.Warn("send stream placeholder", "error", err, "chat_id", l.chatID)
			return
		}
		l.placeholderID = sent.ID
		l.lastEdit = time.Now()
		l.lastShown = msg.Content
		return
	}

	// Telegram throttles edits hard, so intermediate deltas are coalesced.
	if time.Since(l.lastEdit) < config.StreamEditInterval {
		return
	}
	l.edit(msg.Content)
}

// showFinal renders the completed reply, replacing the throttled partial
// view. Overflow past one message is sent as follow-up messages.
func (l *chatListener) showFinal(content string) {
	if content == "" {
		return
	}

	if utf8.RuneCountInString(content) <= config.MaxTelegramMessageLen {
		if l.placeholderID == 0 {
			if _, err := tg.SendLongMessage(l.ctx, l.bot, l.chatID, content); err != nil {
				slog.Error("send final reply", "error", err, "chat_id", l.chatID)
			}
			return
		}
		l.edit(content)
		return
	}

	parts := tg.SplitMessage(content, config.MaxTelegramMessageLen)
	if l.placeholderID != 0 {
		l.edit(parts[0])
		parts = parts[1:]
	}
	for _, part := range parts {
		if _, err := tg.SendLongMessage(l.ctx, l.bot, l.chatID, part); err != nil {
			slog.Error("send final reply", "error", err, "chat_id", l.chatID)
			return
		}
	}
}

func (l *chatListener) edit(content string) {
	if content == l.lastShown {
		return
	}
	if err := tg.EditLongMessage(l.ctx, l.bot, l.chatID, l.placeholderID, content); err != nil {
		slog.Warn("edit stream message", "error", err, "chat_id", l.chatID)
		return
	}
	l.lastEdit = time.Now()
	l.lastShown = content
}
