package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/roznoapp/rozno/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamer struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, onDelta func(string)) (*Usage, error)
}

func (f *fakeStreamer) StreamChat(ctx context.Context, sessionID string, messages []ChatMessage, onDelta func(string)) (*Usage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, onDelta)
}

func (f *fakeStreamer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memMessages struct {
	mu       sync.Mutex
	stored   []domain.Message
	inserted []domain.Message
}

func (m *memMessages) Insert(ctx context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, msg)
	m.stored = append(m.stored, msg)
	return nil
}

func (m *memMessages) ListByUser(ctx context.Context, userID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Message, len(m.stored))
	copy(out, m.stored)
	return out, nil
}

func (m *memMessages) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

func (m *memMessages) insertedByRole(role string) []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.inserted {
		if msg.Role == role {
			out = append(out, msg)
		}
	}
	return out
}

type memMoodLogs struct {
	mu   sync.Mutex
	logs []domain.MoodLog
}

func (m *memMoodLogs) Insert(ctx context.Context, log domain.MoodLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *memMoodLogs) all() []domain.MoodLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MoodLog, len(m.logs))
	copy(out, m.logs)
	return out
}

type stubPrompts struct{}

func (stubPrompts) Build(ctx context.Context, cctx ConversationContext, history []domain.Message) []ChatMessage {
	msgs := []ChatMessage{{Role: "system", Content: "stub"}}
	for _, m := range history {
		msgs = append(msgs, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return msgs
}

type recListener struct {
	mu       sync.Mutex
	appended []domain.Message
	updated  []domain.Message
	typing   []bool
}

func (l *recListener) MessageAppended(msg domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appended = append(l.appended, msg)
}

func (l *recListener) AssistantUpdated(msg domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updated = append(l.updated, msg)
}

func (l *recListener) TypingChanged(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.typing = append(l.typing, active)
}

type recBilling struct {
	mu       sync.Mutex
	recorded []*Usage
}

func (b *recBilling) Record(ctx context.Context, userID string, usage *Usage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recorded = append(b.recorded, usage)
}

func newTestConversation(streamer Streamer) (*Conversation, *memMessages, *memMoodLogs, *recBilling) {
	msgs := &memMessages{}
	moods := &memMoodLogs{}
	billing := &recBilling{}
	svc := NewConversationService(streamer, stubPrompts{}, msgs, moods, billing)
	conv := svc.Conversation(ConversationContext{UserID: "u1", SessionID: "s1"})
	return conv, msgs, moods, billing
}

func TestSubmitMergesDeltasIntoSingleTrailingMessage(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		for _, d := range []string{"سل", "ام", " دن", "یا"} {
			onDelta(d)
		}
		return nil, nil
	}}
	conv, msgs, _, _ := newTestConversation(streamer)
	listener := &recListener{}

	final, err := conv.Submit(context.Background(), "سلام", listener)
	require.NoError(t, err)
	assert.Equal(t, "سلام دنیا", final.Content)
	assert.Equal(t, domain.RoleAssistant, final.Role)

	log := conv.Messages()
	require.Len(t, log, 2)
	assert.Equal(t, domain.RoleUser, log[0].Role)
	assert.Equal(t, final.ID, log[1].ID)
	assert.Equal(t, "سلام دنیا", log[1].Content)

	// Final assistant message persisted exactly once.
	require.Eventually(t, func() bool {
		return len(msgs.insertedByRole(domain.RoleAssistant)) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "سلام دنیا", msgs.insertedByRole(domain.RoleAssistant)[0].Content)

	// User message write was fire-and-forget but still lands.
	require.Eventually(t, func() bool {
		return len(msgs.insertedByRole(domain.RoleUser)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitNeverDuplicatesProvisionalTail(t *testing.T) {
	const n = 50
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		for i := 0; i < n; i++ {
			onDelta(fmt.Sprintf("%d ", i))
		}
		return nil, nil
	}}
	conv, _, _, _ := newTestConversation(streamer)

	final, err := conv.Submit(context.Background(), "بشمار", &recListener{})
	require.NoError(t, err)

	log := conv.Messages()
	count := 0
	for _, m := range log {
		if m.ID == final.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, final.ID, log[len(log)-1].ID)
}

func TestSubmitErrorPreservesPartialContentUnpersisted(t *testing.T) {
	streamErr := errors.New("connection reset")
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		onDelta("a")
		onDelta("b")
		return nil, streamErr
	}}
	conv, msgs, _, billing := newTestConversation(streamer)

	_, err := conv.Submit(context.Background(), "سلام", &recListener{})
	require.ErrorIs(t, err, streamErr)

	// Partial text stays visible in the log.
	log := conv.Messages()
	require.Len(t, log, 2)
	assert.Equal(t, domain.RoleAssistant, log[1].Role)
	assert.Equal(t, "ab", log[1].Content)

	// But the assistant turn is never persisted or billed.
	require.Eventually(t, func() bool {
		return len(msgs.insertedByRole(domain.RoleUser)) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, msgs.insertedByRole(domain.RoleAssistant))
	assert.Empty(t, billing.recorded)

	// The turn failure returns the conversation to idle.
	streamer.fn = func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		onDelta("ok")
		return nil, nil
	}
	final, err := conv.Submit(context.Background(), "دوباره", &recListener{})
	require.NoError(t, err)
	assert.Equal(t, "ok", final.Content)
}

func TestSubmitRejectsWhileStreaming(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		close(started)
		<-release
		onDelta("done")
		return nil, nil
	}}
	conv, _, _, _ := newTestConversation(streamer)

	go func() {
		_, _ = conv.Submit(context.Background(), "اولی", &recListener{})
	}()
	<-started

	before := conv.Messages()
	_, err := conv.Submit(context.Background(), "دومی", &recListener{})
	assert.ErrorIs(t, err, domain.ErrActiveRequest)
	assert.Equal(t, before, conv.Messages(), "rejected submit must not mutate the log")
	assert.Equal(t, 1, streamer.callCount(), "rejected submit must not open a second stream")

	close(release)
	require.Eventually(t, func() bool {
		log := conv.Messages()
		return len(log) == 2 && log[1].Content == "done"
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitClassifiesMoodAndStartsStream(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		onDelta("آروم باش")
		return nil, nil
	}}
	conv, _, moods, _ := newTestConversation(streamer)
	listener := &recListener{}

	final, err := conv.Submit(context.Background(), "امروز خیلی استرس دارم", listener)
	require.NoError(t, err)
	assert.Equal(t, 1, streamer.callCount())

	log := conv.Messages()
	assert.Equal(t, "stressed", log[0].Mood)
	// The paired assistant reply inherits the detected mood.
	assert.Equal(t, "stressed", final.Mood)

	require.Eventually(t, func() bool { return len(moods.all()) == 1 }, time.Second, 10*time.Millisecond)
	entry := moods.all()[0]
	assert.Equal(t, "stressed", entry.Mood)
	assert.Equal(t, "chat", entry.Source)
	assert.GreaterOrEqual(t, entry.Intensity, 1)
}

func TestSubmitEmptyText(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		return nil, nil
	}}
	conv, _, _, _ := newTestConversation(streamer)

	_, err := conv.Submit(context.Background(), "   ", &recListener{})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Empty(t, conv.Messages())
	assert.Equal(t, 0, streamer.callCount())
}

func TestSubmitRecordsUsage(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		onDelta("hi")
		return &Usage{PromptTokens: 5, CompletionTokens: 7}, nil
	}}
	conv, _, _, billing := newTestConversation(streamer)

	_, err := conv.Submit(context.Background(), "سلام", &recListener{})
	require.NoError(t, err)
	require.Len(t, billing.recorded, 1)
	assert.Equal(t, 5, billing.recorded[0].PromptTokens)
	assert.Equal(t, 7, billing.recorded[0].CompletionTokens)
}

func TestListenerObservesEveryMutation(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		onDelta("a")
		onDelta("b")
		return nil, nil
	}}
	conv, _, _, _ := newTestConversation(streamer)
	listener := &recListener{}

	_, err := conv.Submit(context.Background(), "سلام", listener)
	require.NoError(t, err)

	require.Len(t, listener.appended, 1)
	assert.Equal(t, domain.RoleUser, listener.appended[0].Role)
	require.Len(t, listener.updated, 2)
	assert.Equal(t, "a", listener.updated[0].Content)
	assert.Equal(t, "ab", listener.updated[1].Content)
	assert.Equal(t, []bool{true, false}, listener.typing)
}

func TestHistorySynthesizesGreetingExactlyOnce(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		return nil, nil
	}}
	conv, msgs, _, _ := newTestConversation(streamer)

	first, err := conv.History(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, domain.RoleAssistant, first[0].Role)
	assert.Equal(t, "calm", first[0].Mood)
	assert.NotEmpty(t, first[0].Content)
	assert.Len(t, msgs.inserted, 1)

	// A reload finds the stored greeting and does not write another.
	second, err := conv.History(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Len(t, msgs.inserted, 1)
}

func TestHistoryReloadPreservesCreationOrder(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		return nil, nil
	}}
	conv, msgs, _, _ := newTestConversation(streamer)

	base := time.Now()
	for i := 0; i < 5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		msgs.stored = append(msgs.stored, domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			UserID:    "u1",
			Role:      role,
			Content:   fmt.Sprintf("msg %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	log, err := conv.History(context.Background())
	require.NoError(t, err)
	require.Len(t, log, 5)
	for i, m := range log {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.ID)
	}
}

func TestClearWipesHistory(t *testing.T) {
	streamer := &fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		onDelta("x")
		return nil, nil
	}}
	conv, msgs, _, _ := newTestConversation(streamer)

	_, err := conv.Submit(context.Background(), "سلام", &recListener{})
	require.NoError(t, err)
	require.NotEmpty(t, conv.Messages())

	require.NoError(t, conv.Clear(context.Background()))
	assert.Empty(t, conv.Messages())

	stored, err := msgs.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestConversationServiceReturnsSameConversationPerContext(t *testing.T) {
	svc := NewConversationService(&fakeStreamer{fn: func(ctx context.Context, onDelta func(string)) (*Usage, error) {
		return nil, nil
	}}, stubPrompts{}, &memMessages{}, &memMoodLogs{}, nil)

	a := svc.Conversation(ConversationContext{UserID: "u1", SessionID: "s1"})
	b := svc.Conversation(ConversationContext{UserID: "u1", SessionID: "s1"})
	c := svc.Conversation(ConversationContext{UserID: "u2", SessionID: "s1"})
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

// End-to-end: real SSE decoding feeding the reconciler must yield identical
// final content no matter how the transport chunks the bytes.
func TestTurnStableAcrossTransportChunkings(t *testing.T) {
	body := []byte(sseRecord("سل") + sseRecord("ام") + sseRecord(" دن") + sseRecord("یا") + "data: [DONE]\n\n")

	for _, split := range []int{1, 9, len(body) / 2, len(body) - 2} {
		server := serveChunks(t, [][]byte{body[:split], body[split:]})
		gateway := NewAIGatewayService(server.URL, "key", "test-model")
		svc := NewConversationService(gateway, stubPrompts{}, &memMessages{}, &memMoodLogs{}, nil)
		conv := svc.Conversation(ConversationContext{UserID: "u1", SessionID: "s1"})

		final, err := conv.Submit(context.Background(), "سلام", &recListener{})
		server.Close()

		require.NoError(t, err, "split %d", split)
		assert.Equal(t, "سلام دنیا", final.Content, "split %d", split)

		log := conv.Messages()
		require.Len(t, log, 2, "split %d", split)
		assert.Equal(t, final.ID, log[1].ID, "split %d", split)
	}
}
