package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/domain"
)

type ProfileStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Create(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	Update(ctx context.Context, p domain.Profile) error
}

type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// FindOrCreate resolves the profile for a Telegram identity, creating it on
// first contact. The second return reports whether the profile is new.
func (s *ProfileService) FindOrCreate(ctx context.Context, telegramID int64, firstName string) (*domain.Profile, bool, error) {
	profile, err := s.profiles.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, false, err
	}

	created, err := s.profiles.Create(ctx, domain.Profile{
		ID:          uuid.NewString(),
		TelegramID:  telegramID,
		DisplayName: truncate(firstName, config.MaxNameLen),
	})
	if err != nil {
		return nil, false, fmt.Errorf("create profile: %w", err)
	}
	return created, true, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// interestSeparators splits on either the Persian or the Latin comma.
var interestSeparators = regexp.MustCompile(`[،,]`)

// Save applies the field limits and persists the profile. Caller surfaces
// the error: profile edits are explicit user actions.
func (s *ProfileService) Save(ctx context.Context, p *domain.Profile, displayName, profession, bio, interestsRaw string) error {
	p.DisplayName = truncate(strings.TrimSpace(displayName), config.MaxNameLen)
	p.Profession = truncate(strings.TrimSpace(profession), config.MaxNameLen)
	p.Bio = truncate(strings.TrimSpace(bio), config.MaxBioLen)

	var interests []string
	for _, part := range interestSeparators.Split(interestsRaw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		interests = append(interests, part)
		if len(interests) == config.MaxInterests {
			break
		}
	}
	p.Interests = interests

	return s.profiles.Update(ctx, *p)
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
