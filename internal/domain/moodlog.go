package domain

import "time"

// MoodLog records one detected mood sample for the history view.
type MoodLog struct {
	ID        int64
	UserID    string
	Mood      string
	Intensity int
	Source    string
	CreatedAt time.Time
}
