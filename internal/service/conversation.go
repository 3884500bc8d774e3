package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/domain"
	"github.com/roznoapp/rozno/internal/mood"
)

// ConversationContext identifies whose log a conversation mutates. It is
// passed explicitly; nothing in the core reads ambient user state.
type ConversationContext struct {
	UserID    string
	SessionID string
}

// Listener observes conversation mutations so a presentation surface can
// re-render after each one.
type Listener interface {
	// MessageAppended fires when a committed message joins the log.
	MessageAppended(msg domain.Message)
	// AssistantUpdated fires on every delta merged into the provisional
	// assistant message; msg carries the full accumulated content.
	AssistantUpdated(msg domain.Message)
	// TypingChanged reports whether an answer is currently being composed.
	TypingChanged(active bool)
}

// Streamer abstracts the AI gateway. A nil error return means the stream
// completed normally after all deltas were delivered.
type Streamer interface {
	StreamChat(ctx context.Context, sessionID string, messages []ChatMessage, onDelta func(string)) (*Usage, error)
}

// PromptSource assembles the gateway message list for a turn.
type PromptSource interface {
	Build(ctx context.Context, cctx ConversationContext, history []domain.Message) []ChatMessage
}

// UsageRecorder accounts a completed turn; implementations log their own
// failures and never block the conversation.
type UsageRecorder interface {
	Record(ctx context.Context, userID string, usage *Usage)
}

type MessageStore interface {
	Insert(ctx context.Context, m domain.Message) error
	ListByUser(ctx context.Context, userID string) ([]domain.Message, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type MoodLogStore interface {
	Insert(ctx context.Context, log domain.MoodLog) error
}

// ConversationService hands out one Conversation per context.
type ConversationService struct {
	gateway  Streamer
	prompts  PromptSource
	messages MessageStore
	moodLogs MoodLogStore
	billing  UsageRecorder // optional

	mu    sync.Mutex
	convs map[string]*Conversation
}

func NewConversationService(gateway Streamer, prompts PromptSource, messages MessageStore, moodLogs MoodLogStore, billing UsageRecorder) *ConversationService {
	return &ConversationService{
		gateway:  gateway,
		prompts:  prompts,
		messages: messages,
		moodLogs: moodLogs,
		billing:  billing,
		convs:    make(map[string]*Conversation),
	}
}

// Conversation returns the conversation for the given context, creating it on
// first use.
func (s *ConversationService) Conversation(cctx ConversationContext) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cctx.UserID + "|" + cctx.SessionID
	if c, ok := s.convs[key]; ok {
		return c
	}
	c := &Conversation{svc: s, cctx: cctx}
	s.convs[key] = c
	return c
}

// Conversation owns the authoritative in-session message log for one user and
// reconciles streamed assistant replies into it. At most one stream session
// is active at a time; the session pointer doubles as the Streaming/Idle
// state flag.
type Conversation struct {
	svc  *ConversationService
	cctx ConversationContext

	mu       sync.Mutex
	messages []domain.Message
	session  *streamSession
}

// streamSession is the ephemeral state of one in-flight assistant response.
type streamSession struct {
	buf           strings.Builder
	provisionalID string
	mood          string
}

// Submit runs one user turn end to end: classify mood, append the user
// message, open the stream, merge deltas into the provisional assistant
// message, and persist the finished reply. It returns the frozen assistant
// message on success.
//
// While a stream session is active, further submissions are rejected with
// domain.ErrActiveRequest without touching the log. On a stream error the
// partial assistant text already shown stays in the log, unpersisted; only
// the error is surfaced.
func (c *Conversation) Submit(ctx context.Context, text string, l Listener) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}

	decision := mood.Classify(text)

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return domain.Message{}, domain.ErrActiveRequest
	}
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		UserID:    c.cctx.UserID,
		SessionID: c.cctx.SessionID,
		Role:      domain.RoleUser,
		Content:   text,
		Mood:      string(decision.Mood),
		CreatedAt: time.Now(),
	}
	c.messages = append(c.messages, userMsg)
	sess := &streamSession{
		provisionalID: uuid.NewString(),
		mood:          string(decision.Mood),
	}
	c.session = sess
	history := slices.Clone(c.messages)
	c.mu.Unlock()

	l.MessageAppended(userMsg)

	// Issued before the stream opens, completion not awaited. A message can
	// be visible but not yet durable in rare failure windows.
	go c.persistUserTurn(userMsg, decision)

	request := c.svc.prompts.Build(ctx, c.cctx, history)

	l.TypingChanged(true)
	defer l.TypingChanged(false)

	streamCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	usage, err := c.svc.gateway.StreamChat(streamCtx, c.cctx.SessionID, request, func(delta string) {
		c.applyDelta(sess, delta, l)
	})

	c.mu.Lock()
	final := c.finalize(sess)
	c.mu.Unlock()

	if err != nil {
		return domain.Message{}, err
	}

	if final.ID != "" {
		if err := c.svc.messages.Insert(ctx, final); err != nil {
			slog.Error("persist assistant message", "error", err, "user_id", c.cctx.UserID)
		}
		if c.svc.billing != nil {
			c.svc.billing.Record(ctx, c.cctx.UserID, usage)
		}
	}
	return final, nil
}

// applyDelta merges one fragment. Safe to call any number of times: the
// buffer carries the full accumulated text, so the provisional tail message
// is replaced in place rather than appended to, and exactly one message with
// the provisional id ever exists.
func (c *Conversation) applyDelta(sess *streamSession, delta string, l Listener) {
	c.mu.Lock()
	sess.buf.WriteString(delta)
	content := sess.buf.String()

	var msg domain.Message
	if n := len(c.messages); n > 0 && c.messages[n-1].ID == sess.provisionalID {
		c.messages[n-1].Content = content
		msg = c.messages[n-1]
	} else {
		msg = domain.Message{
			ID:        sess.provisionalID,
			UserID:    c.cctx.UserID,
			SessionID: c.cctx.SessionID,
			Role:      domain.RoleAssistant,
			Content:   content,
			Mood:      sess.mood,
			CreatedAt: time.Now(),
		}
		c.messages = append(c.messages, msg)
	}
	c.mu.Unlock()

	l.AssistantUpdated(msg)
}

// finalize clears the stream session (back to idle) and returns the frozen
// assistant message, or a zero Message when nothing was received. Caller
// holds c.mu.
func (c *Conversation) finalize(sess *streamSession) domain.Message {
	c.session = nil
	n := len(c.messages)
	if sess.buf.Len() == 0 || n == 0 || c.messages[n-1].ID != sess.provisionalID {
		return domain.Message{}
	}
	return c.messages[n-1]
}

// persistUserTurn is the detached write for a submitted user message and its
// mood sample. Failures are logged, never surfaced; conversation state is
// already committed in memory.
func (c *Conversation) persistUserTurn(msg domain.Message, decision mood.Decision) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.svc.messages.Insert(ctx, msg); err != nil {
		slog.Error("persist user message", "error", err, "user_id", c.cctx.UserID)
	}
	if err := c.svc.moodLogs.Insert(ctx, domain.MoodLog{
		UserID:    c.cctx.UserID,
		Mood:      string(decision.Mood),
		Intensity: decision.Intensity(),
		Source:    "chat",
	}); err != nil {
		slog.Error("persist mood log", "error", err, "user_id", c.cctx.UserID)
	}
}

// History loads the persisted log into memory. An empty store yields a
// synthesized time-of-day greeting, persisted exactly once.
func (c *Conversation) History(ctx context.Context) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.svc.messages.ListByUser(ctx, c.cctx.UserID)
	if err != nil {
		return nil, err
	}

	if len(stored) == 0 {
		greeting := domain.Message{
			ID:        uuid.NewString(),
			UserID:    c.cctx.UserID,
			SessionID: c.cctx.SessionID,
			Role:      domain.RoleAssistant,
			Content:   mood.TimeGreeting(time.Now()),
			Mood:      string(mood.Calm),
			CreatedAt: time.Now(),
		}
		if err := c.svc.messages.Insert(ctx, greeting); err != nil {
			slog.Error("persist greeting", "error", err, "user_id", c.cctx.UserID)
		}
		stored = []domain.Message{greeting}
	}

	c.messages = stored
	return slices.Clone(stored), nil
}

// Messages returns a copy of the in-memory log.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Clear wipes the stored and in-memory history. Unlike background writes
// this is user-initiated, so the error is returned for surfacing.
func (c *Conversation) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.svc.messages.DeleteByUser(ctx, c.cctx.UserID); err != nil {
		return err
	}
	c.messages = nil
	return nil
}
