// Package prefs — service.go: тема оформления поверх репозитория.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// Store — хранилище настроек (Repository или фейк в тестах).
type Store interface {
	Get(ctx context.Context, userID int64, key string) (*Preference, error)
	Set(ctx context.Context, userID int64, key, value string) error
}

// Service управляет темой пользователя.
type Service struct {
	store Store
}

// NewService создаёт сервис настроек.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Theme возвращает тему пользователя. Нет записи или мусор в базе — тема по умолчанию.
func (s *Service) Theme(ctx context.Context, userID int64) (Theme, error) {
	p, err := s.store.Get(ctx, userID, KeyTheme)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultTheme, nil
		}
		return DefaultTheme, err
	}

	theme, ok := ParseTheme(p.Value)
	if !ok {
		log.WithFields(log.Fields{
			"user_id": userID,
			"value":   p.Value,
		}).Warn("Неизвестная тема в базе, используем тему по умолчанию")
	}
	return theme, nil
}

// SetTheme сохраняет тему.
func (s *Service) SetTheme(ctx context.Context, userID int64, theme Theme) error {
	if _, ok := ParseTheme(string(theme)); !ok {
		return fmt.Errorf("неизвестная тема %q", theme)
	}
	if err := s.store.Set(ctx, userID, KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("ошибка сохранения темы: %w", err)
	}
	return nil
}

// ToggleTheme переключает тему и возвращает новую.
func (s *Service) ToggleTheme(ctx context.Context, userID int64) (Theme, error) {
	current, err := s.Theme(ctx, userID)
	if err != nil {
		return current, err
	}

	next := current.Toggle()
	if err := s.SetTheme(ctx, userID, next); err != nil {
		return current, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"theme":   next,
	}).Info("Тема переключена")
	return next, nil
}
