// Package assist — service.go оборачивает Generator: лимит запросов,
// таймаут, метрики и fallback-ответы. Методы Service никогда не возвращают ошибку.
package assist

import (
	"context"
	"errors"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/metrics"
)

// errDisabled — генеративный сервис не настроен.
var errDisabled = errors.New("generative service is disabled")

// Операции (для логов и метрик).
const (
	OpSubjects = "subjects"
	OpPrice    = "price"
	OpUrgency  = "urgency"
	OpSummary  = "summary"
	OpBuddy    = "buddy"
)

// Service — подсказки с гарантированным ответом.
type Service struct {
	gen     Generator // nil — только fallback
	limiter *rate.Limiter
	timeout time.Duration
}

// NewService создаёт сервис. gen == nil отключает вызовы сервиса.
func NewService(gen Generator, rps float64, burst int, timeout time.Duration) *Service {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Service{
		gen:     gen,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
	}
}

// Enabled — подключён ли генеративный сервис.
func (s *Service) Enabled() bool {
	return s.gen != nil
}

// call выполняет fn с лимитом и таймаутом. Ошибка означает «нужен fallback».
func (s *Service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	if s.gen == nil {
		metrics.ObserveAICall(op, metrics.OutcomeFallback, start)
		return errDisabled
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.limiter.Wait(ctx)
	if err == nil {
		err = fn(ctx)
	}

	switch {
	case err == nil:
		metrics.ObserveAICall(op, metrics.OutcomeOK, start)
	case errors.Is(err, context.Canceled):
		metrics.ObserveAICall(op, metrics.OutcomeCanceled, start)
		log.WithField("op", op).Debug("assist: запрос отменён")
	default:
		metrics.ObserveAICall(op, metrics.OutcomeFallback, start)
		log.WithError(err).WithField("op", op).Warn("assist: сервис недоступен, используем fallback")
	}
	return err
}

// SuggestSubjects — предметы по названию книги.
func (s *Service) SuggestSubjects(ctx context.Context, title string) SubjectSuggestion {
	var out SubjectSuggestion
	err := s.call(ctx, OpSubjects, func(ctx context.Context) error {
		var err error
		out, err = s.gen.SuggestSubjects(ctx, title)
		return err
	})
	if err != nil {
		return SubjectSuggestion{
			Subjects:    append([]string(nil), FallbackSubjects...),
			Description: FallbackDescription,
		}
	}
	return out
}

// SuggestFairPrice — честная цена для продажи.
func (s *Service) SuggestFairPrice(ctx context.Context, mrp int, condition catalog.Condition, title string) PriceSuggestion {
	var out PriceSuggestion
	err := s.call(ctx, OpPrice, func(ctx context.Context) error {
		var err error
		out, err = s.gen.SuggestFairPrice(ctx, mrp, condition, title)
		return err
	})
	if err != nil {
		return PriceSuggestion{
			SuggestedPrice: FallbackPrice(mrp, condition),
			Advice:         FallbackPriceAdvice,
		}
	}
	if out.Advice == "" {
		out.Advice = FallbackPriceAdvice
	}
	return out
}

// CheckUrgency — срочность по тексту заметки.
func (s *Service) CheckUrgency(ctx context.Context, note string) catalog.Urgency {
	var out catalog.Urgency
	err := s.call(ctx, OpUrgency, func(ctx context.Context) error {
		var err error
		out, err = s.gen.CheckUrgency(ctx, note)
		return err
	})
	if err != nil {
		return catalog.UrgencyMedium
	}
	return out
}

// SummarizeFeedback — одно предложение по отзывам.
func (s *Service) SummarizeFeedback(ctx context.Context, comments []string) string {
	if len(comments) == 0 {
		return FallbackFeedbackNote
	}
	var out string
	err := s.call(ctx, OpSummary, func(ctx context.Context) error {
		var err error
		out, err = s.gen.SummarizeFeedback(ctx, comments)
		return err
	})
	if err != nil {
		return FallbackFeedbackNote
	}
	return out
}

// BuddyReply — ответ Buddy на сообщение с учётом всей истории.
func (s *Service) BuddyReply(ctx context.Context, message string, prior []Turn) string {
	var out string
	err := s.call(ctx, OpBuddy, func(ctx context.Context) error {
		var err error
		out, err = s.gen.BuddyReply(ctx, message, prior)
		return err
	})
	if err != nil {
		return FallbackBuddyReply
	}
	return out
}

// FallbackPrice = round(mrp * скидка): New 0.8, Good 0.6, остальное 0.4.
func FallbackPrice(mrp int, condition catalog.Condition) int {
	discount := 0.4
	switch condition {
	case catalog.ConditionNew:
		discount = 0.8
	case catalog.ConditionGood:
		discount = 0.6
	}
	return int(math.Round(float64(mrp) * discount))
}
