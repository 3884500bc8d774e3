package domain

import "errors"

var (
	ErrActiveRequest   = errors.New("active request exists")
	ErrRateLimited     = errors.New("rate limited by AI gateway")
	ErrQuotaExhausted  = errors.New("AI gateway credits exhausted")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmptyMessage    = errors.New("empty message")
)
