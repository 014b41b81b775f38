// Package prefs — repository.go читает и пишет таблицу preferences.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get: если не найдено — ошибка с pgx.ErrNoRows (errors.Is(err, pgx.ErrNoRows) == true)
func (r *Repository) Get(ctx context.Context, userID int64, key string) (*Preference, error) {
	query := `
		SELECT user_id, key, value, updated_at
		FROM preferences
		WHERE user_id = $1 AND key = $2
	`
	var p Preference
	err := r.db.QueryRow(ctx, query, userID, key).Scan(&p.UserID, &p.Key, &p.Value, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("настройка не найдена (user_id=%d, key=%s): %w", userID, key, err)
		}
		return nil, fmt.Errorf("ошибка чтения настройки (user_id=%d, key=%s): %w", userID, key, err)
	}
	return &p, nil
}

// Set сохраняет значение, на конфликте перезаписывает.
func (r *Repository) Set(ctx context.Context, userID int64, key, value string) error {
	query := `
		INSERT INTO preferences (user_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("ошибка сохранения настройки: %w", err)
	}
	return nil
}
