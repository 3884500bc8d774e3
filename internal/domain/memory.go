package domain

import "time"

// MemoryEntry is a keyed long-term fact about a user ("شغل" -> "معلم").
// Saving an existing key replaces its value.
type MemoryEntry struct {
	ID        int64
	UserID    string
	Key       string
	Value     string
	UpdatedAt time.Time
}
