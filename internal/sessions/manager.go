package sessions

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/metrics"
	"needbook.app/telegram-bot/internal/validation"
)

// Config — параметры новых сессий.
type Config struct {
	Seed        catalog.Seed
	EmailMarker string
	Now         func() time.Time
}

// Manager хранит активные сессии по chat id.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	seed        catalog.Seed
	validate    *validation.Validator
	emailMarker string
	now         func() time.Time
}

// NewManager создаёт менеджер сессий.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		sessions:    make(map[int64]*Session),
		seed:        cfg.Seed,
		validate:    validation.New(),
		emailMarker: cfg.EmailMarker,
		now:         cfg.Now,
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Get возвращает сессию чата, создавая её при первом обращении.
// created=true — сессия новая.
func (m *Manager) Get(chatID, userID int64) (s *Session, created bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[chatID]; ok {
		s.Touch(now)
		return s, false
	}

	s = newSession(chatID, userID, m.seed, m.validate, m.emailMarker, m.now)
	m.sessions[chatID] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	s.Logger().Info("Новая сессия")
	return s, true
}

// Lookup ищет сессию без создания.
func (m *Manager) Lookup(chatID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	return s, nil
}

// Discard завершает сессию и отменяет её фоновые задачи.
func (m *Manager) Discard(chatID int64) error {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	if ok {
		delete(m.sessions, chatID)
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if !ok {
		return common.ErrSessionNotFound
	}
	s.Tasks.CancelAll()
	s.Logger().Info("Сессия завершена")
	return nil
}

// EvictIdle удаляет сессии без активности дольше ttl. Возвращает число удалённых.
func (m *Manager) EvictIdle(now time.Time, ttl time.Duration) int {
	var evicted []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > ttl {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range evicted {
		s.Tasks.CancelAll()
		s.Logger().WithField("idle", now.Sub(s.LastSeen()).Round(time.Second)).Info("Сессия истекла")
	}
	if len(evicted) > 0 {
		log.WithField("count", len(evicted)).Info("Неактивные сессии удалены")
	}
	return len(evicted)
}

// Count — число активных сессий.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
