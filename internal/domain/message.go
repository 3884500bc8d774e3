package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation log. Content is append-only while an
// assistant reply streams in and frozen afterwards; user messages never change.
type Message struct {
	ID        string
	UserID    string
	SessionID string
	Role      string
	Content   string
	Mood      string // empty for greeting/system entries
	CreatedAt time.Time
}
