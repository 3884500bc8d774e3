package config

import "time"

const (
	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Prompt context window: stored messages sent to the gateway
	HistoryWindow = 20

	// Mood history view
	MoodHistoryLimit = 50

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Minimum interval between progressive edits of the streaming reply
	StreamEditInterval = 900 * time.Millisecond

	// Typing indicator refresh
	TypingInterval = 4 * time.Second

	// Per-chat messages per minute
	RateLimitPerMinute = 6

	// Rate limiter bucket pruning
	RateLimitCleanup = 60 * time.Second

	// Profile field limits
	MaxNameLen      = 100
	MaxBioLen       = 500
	MaxInterests    = 20
	MaxMemoryKeyLen = 100
)
