// Package jobs управляет фоновыми задачами (cron).
// scheduler.go: периодическая очистка неактивных сессий и обновление
// метрики активных сессий.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/metrics"
)

// SessionSweeper — то, что умеет удалять неактивные сессии (sessions.Manager).
type SessionSweeper interface {
	EvictIdle(now time.Time, ttl time.Duration) int
	Count() int
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionSweeper
	schedule string
	idleTTL  time.Duration
	now      func() time.Time
}

// NewScheduler создаёт планировщик в заданном часовом поясе.
func NewScheduler(sessions SessionSweeper, schedule string, idleTTL time.Duration, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		sessions: sessions,
		schedule: schedule,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return fmt.Errorf("некорректное расписание %q: %w", s.schedule, err)
	}

	// Метрика раз в минуту, даже если сессии не истекают
	if _, err := s.cron.AddFunc("@every 1m", s.refreshGauge); err != nil {
		return fmt.Errorf("ошибка регистрации задачи метрик: %w", err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"schedule": s.schedule,
		"idle_ttl": s.idleTTL,
	}).Info("Планировщик задач запущен")
	return nil
}

// Sweep удаляет сессии без активности дольше idleTTL.
func (s *Scheduler) Sweep() {
	log.Debug("[CRON] Очистка неактивных сессий")
	n := s.sessions.EvictIdle(s.now(), s.idleTTL)
	if n > 0 {
		log.WithField("count", n).Info("[CRON] Сессии удалены по неактивности")
	}
	s.refreshGauge()
}

func (s *Scheduler) refreshGauge() {
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
}

// Stop останавливает планировщик и ждёт выполняющиеся задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
