package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposure(t *testing.T) {
	ObserveAward("request_posted", 5, "")
	ObserveAward("exchange_completed", 15, "Helpful Reader")
	ObserveAICall("subjects", OutcomeFallback, time.Now().Add(-time.Second))
	Transitions.WithLabelValues("home").Inc()
	GateRedirects.Inc()
	ActiveSessions.Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, m := range []string{
		`needbook_awards_total{event="request_posted"}`,
		"needbook_points_awarded_total",
		`needbook_tier_promotions_total{tag="Helpful Reader"}`,
		`needbook_ai_calls_total{op="subjects",outcome="fallback"}`,
		"needbook_ai_call_duration_seconds",
		`needbook_view_transitions_total{view="home"}`,
		"needbook_verification_redirects_total",
		"needbook_active_sessions 3",
	} {
		assert.Contains(t, body, m)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartServerDisabled(t *testing.T) {
	s := StartServer("")
	assert.Nil(t, s)
	s.Shutdown(t.Context())
}
