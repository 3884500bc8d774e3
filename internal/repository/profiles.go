package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roznoapp/rozno/internal/domain"
)

type Profiles struct {
	db *pgxpool.Pool
}

func NewProfiles(db *pgxpool.Pool) *Profiles {
	return &Profiles{db: db}
}

func (r *Profiles) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, telegram_id, display_name, profession, interests, bio, created_at, updated_at
		FROM profiles
		WHERE telegram_id = $1`,
		telegramID,
	)

	var p domain.Profile
	err := row.Scan(&p.ID, &p.TelegramID, &p.DisplayName, &p.Profession, &p.Interests, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *Profiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, telegram_id, display_name, profession, interests, bio, created_at, updated_at
		FROM profiles
		WHERE id = $1`,
		id,
	)

	var p domain.Profile
	err := row.Scan(&p.ID, &p.TelegramID, &p.DisplayName, &p.Profession, &p.Interests, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *Profiles) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO profiles (id, telegram_id, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, telegram_id, display_name, profession, interests, bio, created_at, updated_at`,
		p.ID, p.TelegramID, p.DisplayName,
	)

	var created domain.Profile
	err := row.Scan(&created.ID, &created.TelegramID, &created.DisplayName, &created.Profession,
		&created.Interests, &created.Bio, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &created, nil
}

func (r *Profiles) Update(ctx context.Context, p domain.Profile) error {
	_, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET display_name = $2, profession = $3, interests = $4, bio = $5, updated_at = now()
		WHERE id = $1`,
		p.ID, p.DisplayName, p.Profession, p.Interests, p.Bio,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
