package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"needbook.app/telegram-bot/internal/common"
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	seed, err := DefaultSeed()
	require.NoError(t, err)
	return NewStore(seed.At(time.Now()))
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	require.Len(t, seed.Requests, 4)
	require.Len(t, seed.Listings, 4)
	assert.Equal(t, "Alex Smith", seed.Requests[0].RequesterName)
	assert.Equal(t, UrgencyHigh, seed.Requests[0].Urgency)
	assert.Equal(t, "14:00", seed.Requests[0].PreferredTime)

	emily := seed.Listings[1]
	assert.Equal(t, ModeBuy, emily.Mode)
	require.NotNil(t, emily.Price)
	assert.Equal(t, 15, *emily.Price)
	assert.True(t, emily.HasPrice())
	assert.Nil(t, seed.Listings[0].Price)
}

func TestSeedAtStampsRequests(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	stamped := seed.At(now)
	for _, r := range stamped.Requests {
		assert.Equal(t, now, r.CreatedAt)
	}
	assert.True(t, seed.Requests[0].CreatedAt.IsZero(), "original seed must stay untouched")
}

func TestPrependRequestKeepsOrder(t *testing.T) {
	s := newSeededStore(t)
	before := s.Requests()

	s.PrependRequest(BookRequest{ID: "new"})
	after := s.Requests()

	require.Len(t, after, len(before)+1)
	assert.Equal(t, "new", after[0].ID)
	assert.Equal(t, before, after[1:])
}

func TestPrependListingAndFilter(t *testing.T) {
	s := newSeededStore(t)
	s.PrependListing(BookListing{ID: "Lnew", Mode: ModeDonate})

	all := s.Listings("")
	assert.Equal(t, "Lnew", all[0].ID)
	assert.Len(t, all, 5)

	donations := s.Listings(ModeDonate)
	require.Len(t, donations, 2)
	assert.Equal(t, "Lnew", donations[0].ID)
	assert.Equal(t, "L3", donations[1].ID)
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	s := newSeededStore(t)
	reqs := s.Requests()
	reqs[0].Title = "mutated"
	assert.NotEqual(t, "mutated", s.Requests()[0].Title)
}

func TestLookup(t *testing.T) {
	s := newSeededStore(t)

	r, err := s.Request("2")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Chen", r.RequesterName)

	_, err = s.Request("nope")
	assert.ErrorIs(t, err, common.ErrRequestNotFound)

	l, err := s.Listing("L4")
	require.NoError(t, err)
	assert.Equal(t, ModeExchange, l.Mode)

	_, err = s.Listing("nope")
	assert.ErrorIs(t, err, common.ErrListingNotFound)
}

func TestProfileSetOnce(t *testing.T) {
	s := NewStore(Seed{})
	_, ok := s.Profile()
	assert.False(t, ok)

	require.NoError(t, s.SetProfile(UserProfile{Name: "Ann"}))
	assert.ErrorIs(t, s.SetProfile(UserProfile{Name: "Bob"}), common.ErrProfileAlreadySet)

	p, ok := s.Profile()
	assert.True(t, ok)
	assert.Equal(t, "Ann", p.Name)
}

func TestVerifiedFlag(t *testing.T) {
	s := NewStore(Seed{})
	assert.False(t, s.Verified())
	s.MarkVerified()
	assert.True(t, s.Verified())
}

func TestIDs(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	reqID, err := NewRequestID(now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reqID, "1700000000000-"))

	listID, err := NewListingID(now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(listID, "L1700000000000-"))

	other, err := NewRequestID(now)
	require.NoError(t, err)
	assert.NotEqual(t, reqID, other)
}

func TestParseModeAndCondition(t *testing.T) {
	m, ok := ParseMode(" donate ")
	assert.True(t, ok)
	assert.Equal(t, ModeDonate, m)

	_, ok = ParseMode("rent")
	assert.False(t, ok)

	c, ok := ParseCondition("highlighted")
	assert.True(t, ok)
	assert.Equal(t, ConditionHighlighted, c)
}
