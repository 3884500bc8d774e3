package service

import (
	"context"
	"strings"

	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/domain"
)

type MemoryStore interface {
	Upsert(ctx context.Context, userID, key, value string) error
	ListByUser(ctx context.Context, userID string) ([]domain.MemoryEntry, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// MemoryService manages the keyed long-term fact store the AI personalizes
// from.
type MemoryService struct {
	memory MemoryStore
}

func NewMemoryService(memory MemoryStore) *MemoryService {
	return &MemoryService{memory: memory}
}

// Save stores a fact, replacing any existing value for the key.
func (s *MemoryService) Save(ctx context.Context, userID, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return domain.ErrEmptyMessage
	}
	if runes := []rune(key); len(runes) > config.MaxMemoryKeyLen {
		key = string(runes[:config.MaxMemoryKeyLen])
	}
	return s.memory.Upsert(ctx, userID, key, value)
}

func (s *MemoryService) List(ctx context.Context, userID string) ([]domain.MemoryEntry, error) {
	return s.memory.ListByUser(ctx, userID)
}

// Clear deletes every stored fact for the user. The error is returned for
// surfacing: this is an explicit user action.
func (s *MemoryService) Clear(ctx context.Context, userID string) error {
	return s.memory.DeleteByUser(ctx, userID)
}
