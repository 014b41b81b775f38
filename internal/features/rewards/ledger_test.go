package rewards

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardScenarioCrossesTierBoundaries(t *testing.T) {
	l := NewLedger()

	r := l.Award(10, CounterNone)
	assert.Equal(t, 10, r.After.Points)
	assert.Equal(t, TagBookStarter, r.After.Tag)

	r = l.Award(45, CounterNone)
	assert.Equal(t, 55, r.After.Points)
	assert.Equal(t, TagHelpfulReader, r.After.Tag)
	assert.True(t, r.Promoted())

	r = l.Award(96, CounterNone)
	assert.Equal(t, 151, r.After.Points)
	assert.Equal(t, TagCampusContributor, r.After.Tag)
}

func TestAwardIncrementsOnlyNamedCounter(t *testing.T) {
	tests := []struct {
		counter Counter
		want    Stats
	}{
		{CounterNone, Stats{Points: 7}},
		{CounterSuccessfulExchanges, Stats{Points: 7, SuccessfulExchanges: 1}},
		{CounterBooksLent, Stats{Points: 7, BooksLent: 1}},
		{CounterBooksDonated, Stats{Points: 7, BooksDonated: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.counter.String(), func(t *testing.T) {
			l := NewLedger()
			r := l.Award(7, tt.counter)
			require.True(t, r.Applied)
			assert.Equal(t, tt.want, l.Stats())
		})
	}
}

func TestAwardUnknownCounterStillAwardsPoints(t *testing.T) {
	l := NewLedger()
	r := l.Award(20, Counter(42))

	assert.True(t, r.Applied)
	assert.Equal(t, Stats{Points: 20}, l.Stats())
	assert.Equal(t, CounterNone, l.History(1)[0].Counter)
}

func TestAwardRejectsNegativeAmount(t *testing.T) {
	l := NewLedger()
	l.Award(60, CounterNone)

	r := l.Award(-30, CounterBooksLent)
	assert.False(t, r.Applied)
	assert.Equal(t, Stats{Points: 60, Tag: TagHelpfulReader}, l.Stats())
	assert.Len(t, l.History(0), 1)
}

func TestAwardZeroStillCountsCounter(t *testing.T) {
	l := NewLedger()
	l.Award(0, CounterBooksLent)
	assert.Equal(t, Stats{BooksLent: 1}, l.Stats())
}

func TestTagNeverStaleAcrossRandomAwards(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	l := NewLedger()
	total := 0

	for i := 0; i < 500; i++ {
		amount := rng.Intn(40)
		total += amount
		r := l.Award(amount, Counter(rng.Intn(4)))
		require.Equal(t, total, r.After.Points)
		require.Equal(t, TagFor(total), r.After.Tag)
		require.GreaterOrEqual(t, r.After.Points, r.Before.Points)
	}
}

func TestAwardEventTable(t *testing.T) {
	tests := []struct {
		event Event
		want  Stats
	}{
		{EventOnboardingCompleted, Stats{Points: 10}},
		{EventRequestPosted, Stats{Points: 5}},
		{EventListingPosted, Stats{Points: 10}},
		{EventDonationPosted, Stats{Points: 30, BooksDonated: 1}},
		{EventExchangeCompleted, Stats{Points: 15, SuccessfulExchanges: 1}},
		{EventFeedbackSubmitted, Stats{Points: 5}},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			l := NewLedger()
			l.AwardEvent(tt.event)
			assert.Equal(t, tt.want, l.Stats())
			assert.Equal(t, tt.event, l.History(1)[0].Event)
		})
	}
}

func TestAwardEventUnknownIsNoop(t *testing.T) {
	l := NewLedger()
	r := l.AwardEvent(Event("bogus"))
	assert.False(t, r.Applied)
	assert.Equal(t, Stats{}, l.Stats())
}

func TestHistoryNewestFirstAndBounded(t *testing.T) {
	l := NewLedger()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	l.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }

	for i := 1; i <= historyLimit+5; i++ {
		l.Award(1, CounterNone)
	}

	all := l.History(0)
	require.Len(t, all, historyLimit)
	assert.Equal(t, historyLimit+5, all[0].Points)
	assert.True(t, all[0].At.After(all[1].At))

	assert.Len(t, l.History(3), 3)
}

func TestParseCounter(t *testing.T) {
	c, ok := ParseCounter("booksDonated")
	assert.True(t, ok)
	assert.Equal(t, CounterBooksDonated, c)

	_, ok = ParseCounter("booksDonatd")
	assert.False(t, ok)
}
