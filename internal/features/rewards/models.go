// Package rewards — движок доверия: очки, ранги (tag) и счётчики активности.
// models.go описывает статистику пользователя, ранги и записи журнала начислений.
package rewards

import "time"

// Tag — ранг пользователя, всегда вычисляется из очков (см. tiers.go).
type Tag int

const (
	TagBookStarter Tag = iota
	TagHelpfulReader
	TagCampusContributor
	TagStudyHero
	TagBookChampion
)

func (t Tag) String() string {
	switch t {
	case TagBookStarter:
		return "Book Starter"
	case TagHelpfulReader:
		return "Helpful Reader"
	case TagCampusContributor:
		return "Campus Contributor"
	case TagStudyHero:
		return "Study Hero"
	case TagBookChampion:
		return "Book Champion"
	default:
		return "Unknown"
	}
}

// Counter — счётчик активности, который может увеличить начисление.
type Counter int

const (
	CounterNone Counter = iota
	CounterSuccessfulExchanges
	CounterBooksLent
	CounterBooksDonated
)

func (c Counter) String() string {
	switch c {
	case CounterNone:
		return ""
	case CounterSuccessfulExchanges:
		return "successfulExchanges"
	case CounterBooksLent:
		return "booksLent"
	case CounterBooksDonated:
		return "booksDonated"
	default:
		return "unknown"
	}
}

// ParseCounter разбирает имя счётчика. Неизвестное имя — (CounterNone, false).
func ParseCounter(name string) (Counter, bool) {
	switch name {
	case "successfulExchanges":
		return CounterSuccessfulExchanges, true
	case "booksLent":
		return CounterBooksLent, true
	case "booksDonated":
		return CounterBooksDonated, true
	default:
		return CounterNone, false
	}
}

// Stats — статистика одного пользователя в рамках сессии.
// Tag никогда не задаётся напрямую, только через пересчёт в Ledger.
type Stats struct {
	Points              int
	Tag                 Tag
	SuccessfulExchanges int
	BooksLent           int
	BooksDonated        int
}

// Entry — одна запись журнала начислений (аналог транзакции).
type Entry struct {
	Event   Event     // Что произошло; пусто для прямого Award
	Amount  int       // Сколько очков начислено
	Counter Counter   // Какой счётчик увеличен (CounterNone — никакой)
	Points  int       // Очки после начисления
	At      time.Time // Время начисления
}

// AwardResult — состояние до и после начисления.
type AwardResult struct {
	Before  Stats
	After   Stats
	Applied bool // false — начисление отклонено (отрицательная сумма)
}

// Promoted — ранг вырос в результате начисления.
func (r AwardResult) Promoted() bool {
	return r.After.Tag > r.Before.Tag
}
