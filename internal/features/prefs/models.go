// Package prefs хранит настройки пользователя, которые переживают сессию.
// models.go описывает записи таблицы preferences и тему оформления.
package prefs

import "time"

// KeyTheme — ключ темы в таблице preferences.
const KeyTheme = "theme"

// Theme — тема оформления. Влияет только на символы в сообщениях.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme — тема, пока пользователь её не выбрал.
const DefaultTheme = ThemeLight

// ParseTheme разбирает значение из базы. Неизвестное — (DefaultTheme, false).
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), true
	default:
		return DefaultTheme, false
	}
}

// Toggle возвращает противоположную тему.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preference — строка таблицы preferences.
type Preference struct {
	UserID    int64     `db:"user_id"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
