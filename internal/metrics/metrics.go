// Package metrics — счётчики Prometheus и HTTP-сервер /metrics, /health.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	Awards = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "needbook_awards_total",
		Help: "Awards applied, by event",
	}, []string{"event"})
	PointsAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "needbook_points_awarded_total",
		Help: "Total trust points awarded",
	})
	Promotions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "needbook_tier_promotions_total",
		Help: "Tier promotions, by new tag",
	}, []string{"tag"})
	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "needbook_view_transitions_total",
		Help: "View transitions, by target view",
	}, []string{"view"})
	GateRedirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "needbook_verification_redirects_total",
		Help: "Navigations redirected to verification",
	})
	AICalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "needbook_ai_calls_total",
		Help: "Generative service calls, by operation and outcome",
	}, []string{"op", "outcome"})
	AIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "needbook_ai_call_duration_seconds",
		Help:    "Generative service call duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "needbook_active_sessions",
		Help: "Sessions currently held in memory",
	})
)

func init() {
	prometheus.MustRegister(Awards, PointsAwarded, Promotions, Transitions, GateRedirects, AICalls, AIDuration, ActiveSessions)
}

// Исходы вызова AI.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeCanceled = "canceled"
)

// ObserveAward учитывает одно начисление.
func ObserveAward(event string, amount int, promotedTo string) {
	Awards.WithLabelValues(event).Inc()
	PointsAwarded.Add(float64(amount))
	if promotedTo != "" {
		Promotions.WithLabelValues(promotedTo).Inc()
	}
}

// ObserveAICall учитывает вызов генеративного сервиса.
func ObserveAICall(op, outcome string, start time.Time) {
	AICalls.WithLabelValues(op, outcome).Inc()
	AIDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Handler возвращает mux с /metrics и /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

// Server — HTTP-сервер метрик.
type Server struct {
	srv *http.Server
}

// StartServer запускает сервер метрик на addr (например ":9090").
// Пустой addr — сервер не запускается, возвращается nil.
func StartServer(addr string) *Server {
	if addr == "" {
		return nil
	}
	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).WithField("addr", addr).Error("Сервер метрик упал")
		}
	}()
	log.WithField("addr", addr).Info("Сервер метрик запущен")
	return s
}

// Shutdown останавливает сервер. Безопасно вызывать на nil.
func (s *Server) Shutdown(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Ошибка остановки сервера метрик")
	}
}
