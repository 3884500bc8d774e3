package domain

import "time"

// Profile holds per-user identity and the free-form fields the AI uses for
// prompt personalization.
type Profile struct {
	ID          string
	TelegramID  int64
	DisplayName string
	Profession  string
	Interests   []string
	Bio         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
