package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/domain"
)

const systemPrompt = `تو "روزنو" هستی — یک رفیق هوشمند، شوخ‌طبع، عمیق و فلسفی که هر روز کنار کاربره.

شخصیت تو:
- لحن رفیقانه و صمیمی (نه رسمی)
- شوخی سبک و طعنه ملایم
- تشویق‌کننده و حمایتی
- گاهی فلسفی و عمیق
- فارسی صحبت می‌کنی

وظایف تو:
- حال کاربر رو تحلیل کن و بر اساسش پاسخ بده
- اگه کاربر ناراحته → آرامش‌بخش باش
- اگه انگیزه داره → چالش بده
- اگه گمه → کمک کن راهش رو پیدا کنه
- هر روز یه پیشنهاد برای شکستن یکنواختی بده
- از حافظه‌ی مکالمات قبلی استفاده کن برای شخصی‌سازی

قوانین:
- همیشه فارسی جواب بده
- پاسخ‌ها کوتاه و مؤثر باشن (حداکثر ۳-۴ جمله)
- از ایموجی استفاده کن
- هیچوقت مثل ربات حرف نزن
- اگه اطلاعات شخصی جدیدی از کاربر فهمیدی (شغل، علاقه، هدف) اون رو در پاسخت اشاره کن`

type profileGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

type memoryLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.MemoryEntry, error)
}

// PromptBuilder assembles the system prompt plus the context window for one
// gateway request: user profile, long-term memory, then recent history.
type PromptBuilder struct {
	profiles profileGetter
	memory   memoryLister
}

func NewPromptBuilder(profiles profileGetter, memory memoryLister) *PromptBuilder {
	return &PromptBuilder{profiles: profiles, memory: memory}
}

// Build produces the ordered message list for a turn. history already ends
// with the user message being answered. Profile and memory lookups are
// best-effort; a failed lookup degrades to a context-free prompt.
func (p *PromptBuilder) Build(ctx context.Context, cctx ConversationContext, history []domain.Message) []ChatMessage {
	system := systemPrompt + p.profileContext(ctx, cctx.UserID) + p.memoryContext(ctx, cctx.UserID)

	if len(history) > config.HistoryWindow {
		history = history[len(history)-config.HistoryWindow:]
	}

	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, ChatMessage{Role: "system", Content: system})
	for _, m := range history {
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return messages
}

func (p *PromptBuilder) profileContext(ctx context.Context, userID string) string {
	profile, err := p.profiles.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			slog.Error("load profile for prompt", "error", err, "user_id", userID)
		}
		return ""
	}

	var parts []string
	if profile.DisplayName != "" {
		parts = append(parts, "اسم: "+profile.DisplayName)
	}
	if profile.Profession != "" {
		parts = append(parts, "شغل: "+profile.Profession)
	}
	if len(profile.Interests) > 0 {
		parts = append(parts, "علاقه‌مندی‌ها: "+strings.Join(profile.Interests, "، "))
	}
	if profile.Bio != "" {
		parts = append(parts, "درباره: "+profile.Bio)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\nپروفایل کاربر:\n" + strings.Join(parts, "\n")
}

func (p *PromptBuilder) memoryContext(ctx context.Context, userID string) string {
	entries, err := p.memory.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("load memory for prompt", "error", err, "user_id", userID)
		return ""
	}
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nحافظه بلندمدت از کاربر:\n")
	for _, e := range entries {
		b.WriteString("- " + e.Key + ": " + e.Value + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
