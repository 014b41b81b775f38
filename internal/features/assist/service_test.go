package assist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"needbook.app/telegram-bot/internal/features/catalog"
)

var errBoom = errors.New("boom")

// stubGenerator возвращает заданные значения или ошибку.
type stubGenerator struct {
	err      error
	subjects SubjectSuggestion
	price    PriceSuggestion
	urgency  catalog.Urgency
	summary  string
	reply    string
	calls    int
}

func (s *stubGenerator) SuggestSubjects(ctx context.Context, title string) (SubjectSuggestion, error) {
	s.calls++
	return s.subjects, s.err
}

func (s *stubGenerator) SuggestFairPrice(ctx context.Context, mrp int, c catalog.Condition, title string) (PriceSuggestion, error) {
	s.calls++
	return s.price, s.err
}

func (s *stubGenerator) CheckUrgency(ctx context.Context, note string) (catalog.Urgency, error) {
	s.calls++
	return s.urgency, s.err
}

func (s *stubGenerator) SummarizeFeedback(ctx context.Context, comments []string) (string, error) {
	s.calls++
	return s.summary, s.err
}

func (s *stubGenerator) BuddyReply(ctx context.Context, message string, prior []Turn) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestServiceFallbacksOnFailure(t *testing.T) {
	svc := NewService(&stubGenerator{err: errBoom}, 100, 10, time.Second)
	ctx := context.Background()

	subj := svc.SuggestSubjects(ctx, "Organic Chemistry")
	assert.Equal(t, []string{"Academic", "General"}, subj.Subjects)
	assert.Equal(t, "No description available.", subj.Description)

	price := svc.SuggestFairPrice(ctx, 50, catalog.ConditionGood, "Macro")
	assert.Equal(t, 30, price.SuggestedPrice)
	assert.Equal(t, FallbackPriceAdvice, price.Advice)

	assert.Equal(t, catalog.UrgencyMedium, svc.CheckUrgency(ctx, "asap"))
	assert.Equal(t, FallbackFeedbackNote, svc.SummarizeFeedback(ctx, []string{"nice"}))
	assert.Equal(t, FallbackBuddyReply, svc.BuddyReply(ctx, "hi", nil))
}

func TestServiceDisabledUsesFallbacks(t *testing.T) {
	svc := NewService(nil, 0, 0, time.Second)
	assert.False(t, svc.Enabled())
	assert.Equal(t, 8, svc.SuggestFairPrice(context.Background(), 10, catalog.ConditionNew, "x").SuggestedPrice)
	assert.Equal(t, FallbackBuddyReply, svc.BuddyReply(context.Background(), "hi", nil))
}

func TestServicePassesThroughSuccess(t *testing.T) {
	gen := &stubGenerator{
		subjects: SubjectSuggestion{Subjects: []string{"CS"}, Description: "Algorithms"},
		price:    PriceSuggestion{SuggestedPrice: 11},
		urgency:  catalog.UrgencyHigh,
		summary:  "Great lender.",
		reply:    "Use the library.",
	}
	svc := NewService(gen, 100, 10, time.Second)
	ctx := context.Background()

	assert.Equal(t, gen.subjects, svc.SuggestSubjects(ctx, "Intro to Algorithms"))
	price := svc.SuggestFairPrice(ctx, 20, catalog.ConditionUsed, "x")
	assert.Equal(t, 11, price.SuggestedPrice)
	assert.Equal(t, FallbackPriceAdvice, price.Advice, "empty advice is filled in")
	assert.Equal(t, catalog.UrgencyHigh, svc.CheckUrgency(ctx, "exam tomorrow"))
	assert.Equal(t, "Great lender.", svc.SummarizeFeedback(ctx, []string{"good"}))
	assert.Equal(t, "Use the library.", svc.BuddyReply(ctx, "where?", nil))
}

func TestSummarizeWithoutCommentsSkipsService(t *testing.T) {
	gen := &stubGenerator{summary: "x"}
	svc := NewService(gen, 100, 10, time.Second)

	assert.Equal(t, FallbackFeedbackNote, svc.SummarizeFeedback(context.Background(), nil))
	assert.Zero(t, gen.calls)
}

func TestServiceCanceledContextFallsBack(t *testing.T) {
	gen := &stubGenerator{reply: "late"}
	svc := NewService(gen, 0.0001, 1, time.Second)
	svc.limiter.Allow() // burst used up, next Wait blocks

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, FallbackBuddyReply, svc.BuddyReply(ctx, "hi", nil))
	assert.Zero(t, gen.calls)
}

func TestFallbackPrice(t *testing.T) {
	tests := []struct {
		mrp       int
		condition catalog.Condition
		want      int
	}{
		{100, catalog.ConditionNew, 80},
		{100, catalog.ConditionGood, 60},
		{100, catalog.ConditionUsed, 40},
		{100, catalog.ConditionHighlighted, 40},
		{15, catalog.ConditionGood, 9},
		{13, catalog.ConditionUsed, 5},
		{0, catalog.ConditionNew, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FallbackPrice(tt.mrp, tt.condition), "%d %s", tt.mrp, tt.condition)
	}
}
