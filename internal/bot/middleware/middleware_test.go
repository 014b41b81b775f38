package middleware

import (
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))

	// другой пользователь — свой бакет
	assert.True(t, rl.Allow(2))
}

func TestRateLimiter_ZeroRPSDisablesLimit(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	defer rl.Close()

	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow(7))
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Close()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return start }
	rl.Allow(1)
	rl.now = func() time.Time { return start.Add(idleLimiterTTL - time.Minute) }
	rl.Allow(2)
	require.Equal(t, 2, rl.Len())

	rl.evictIdle(start.Add(idleLimiterTTL + time.Second))
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_CloseIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Close()
	assert.NotPanics(t, rl.Close)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	long := ""
	for i := 0; i < 60; i++ {
		long += "я"
	}
	got := preview(long)
	assert.Equal(t, previewLength+3, len([]rune(got)))
}

func TestLogHelpers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		LogMessage(nil)
		LogCallback(nil)
		LogMessage(&telego.Message{Chat: telego.Chat{ID: 1}, Text: "no sender"})
	})
}

func TestRecoverFromPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer RecoverFromPanic()
		panic("boom")
	})
}
