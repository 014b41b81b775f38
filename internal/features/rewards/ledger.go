// Package rewards — ledger.go содержит единственную точку изменения очков.
// Очки, счётчик и ранг меняются вместе под одной блокировкой,
// ранг никогда не отстаёт от очков.
package rewards

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// historyLimit — сколько последних записей журнала хранить в памяти.
const historyLimit = 100

// Ledger хранит статистику одного пользователя на время сессии.
type Ledger struct {
	mu      sync.RWMutex
	stats   Stats
	history []Entry
	now     func() time.Time
}

// NewLedger создаёт пустой журнал: 0 очков, Book Starter.
func NewLedger() *Ledger {
	return &Ledger{
		stats: Stats{Tag: TagFor(0)},
		now:   time.Now,
	}
}

// Award начисляет amount очков и, если counter задан, увеличивает его на 1.
// Ранг пересчитывается сразу после изменения очков.
//
// Неизвестный counter игнорируется (очки всё равно начисляются).
// Отрицательная сумма отклоняется целиком (Applied=false): в отличие от
// разрешающего контракта «любое целое», очки в сессии никогда не убывают.
func (l *Ledger) Award(amount int, counter Counter) AwardResult {
	return l.apply("", amount, counter)
}

// AwardEvent начисляет очки по таблице Rules.
func (l *Ledger) AwardEvent(event Event) AwardResult {
	rule, ok := Rules[event]
	if !ok {
		log.WithField("event", event).Warn("rewards: неизвестное событие, начисление пропущено")
		l.mu.RLock()
		defer l.mu.RUnlock()
		return AwardResult{Before: l.stats, After: l.stats}
	}
	return l.apply(event, rule.Points, rule.Counter)
}

func (l *Ledger) apply(event Event, amount int, counter Counter) AwardResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.stats
	if amount < 0 {
		log.WithFields(log.Fields{
			"amount": amount,
			"event":  event,
		}).Warn("rewards: отрицательное начисление отклонено")
		return AwardResult{Before: before, After: before}
	}

	l.stats.Points += amount

	switch counter {
	case CounterNone:
	case CounterSuccessfulExchanges:
		l.stats.SuccessfulExchanges++
	case CounterBooksLent:
		l.stats.BooksLent++
	case CounterBooksDonated:
		l.stats.BooksDonated++
	default:
		log.WithField("counter", int(counter)).Warn("rewards: неизвестный счётчик, очки начислены без счётчика")
		counter = CounterNone
	}

	l.stats.Tag = TagFor(l.stats.Points)

	l.history = append(l.history, Entry{
		Event:   event,
		Amount:  amount,
		Counter: counter,
		Points:  l.stats.Points,
		At:      l.now(),
	})
	if len(l.history) > historyLimit {
		l.history = l.history[len(l.history)-historyLimit:]
	}

	return AwardResult{Before: before, After: l.stats, Applied: true}
}

// Stats возвращает копию текущей статистики.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// History возвращает последние limit записей, новые первыми.
func (l *Ledger) History(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	out := make([]Entry, 0, limit)
	for i := len(l.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.history[i])
	}
	return out
}
