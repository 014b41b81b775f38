// Package common содержит общие утилиты, используемые во всём проекте:
// склонение «point/points», форматирование чисел и дат, обрезка текста.
package common

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PluralizePoints возвращает "pt" для 1 и "pts" для остальных.
//
//	PluralizePoints(1)  → "pt"
//	PluralizePoints(0)  → "pts"
//	PluralizePoints(15) → "pts"
func PluralizePoints(n int) string {
	if n == 1 || n == -1 {
		return "pt"
	}
	return "pts"
}

// FormatPoints форматирует очки: FormatPoints(150) → "150 pts".
func FormatPoints(n int) string {
	return fmt.Sprintf("%s %s", FormatNumber(int64(n)), PluralizePoints(n))
}

// FormatAward создаёт строку вида "+15 pts".
// Знак добавляется автоматически.
func FormatAward(amount int) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizePoints(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizePoints(amount))
}

// FormatNumber форматирует число с разделителями тысяч (запятыми).
// Пример: FormatNumber(2350) → "2,350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatNumber(n/1000), n%1000)
}

// FormatDateTime форматирует время в часовом поясе loc: "Jan 02, 15:04".
// nil loc — UTC.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 02, 15:04")
}

// LoadLocation загружает часовой пояс по имени, при ошибке — UTC.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Truncate обрезает строку до max рун и добавляет "...".
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// FirstNonEmpty возвращает первую непустую (после TrimSpace) строку.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
