package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/rewards"
	"needbook.app/telegram-bot/internal/validation"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type leave struct{ from, to View }

func newTestController(t *testing.T) (*Controller, *catalog.Store, *rewards.Ledger, *[]leave) {
	t.Helper()
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)

	store := catalog.NewStore(seed.At(fixedNow))
	ledger := rewards.NewLedger()
	var leaves []leave
	c := NewController(store, ledger, validation.New(), Options{
		Now:     func() time.Time { return fixedNow },
		OnLeave: func(from, to View) { leaves = append(leaves, leave{from, to}) },
	})
	return c, store, ledger, &leaves
}

// verifiedController проходит онбординг и верификацию.
func verifiedController(t *testing.T) (*Controller, *catalog.Store, *rewards.Ledger) {
	t.Helper()
	c, store, ledger, _ := newTestController(t)
	_, err := c.CompleteOnboarding(ProfileForm{Name: "Rahul", Institution: "IIT Delhi", City: "Delhi"})
	require.NoError(t, err)
	_, err = c.Verify("rahul@iit.edu")
	require.NoError(t, err)
	return c, store, ledger
}

func TestGateRedirectsEveryContentViewWhileUnverified(t *testing.T) {
	for _, v := range ContentViews {
		assert.Equal(t, ViewVerify, Gate(v, false), v)
	}
	assert.Equal(t, ViewHome, Gate(ViewVerify, true))
	assert.Equal(t, ViewOnboarding, Gate(ViewOnboarding, false))
	assert.Equal(t, ViewRewards, Gate(ViewRewards, true))
}

func TestNavigateWhileUnverifiedLandsOnVerify(t *testing.T) {
	c, _, _, _ := newTestController(t)

	for _, v := range NavViews {
		got, err := c.Navigate(v)
		require.NoError(t, err)
		assert.Equal(t, ViewVerify, got, v)
		assert.Equal(t, ViewVerify, c.View())
	}
}

func TestNavigateRejectsActionOnlyViews(t *testing.T) {
	c, _, _ := verifiedController(t)

	_, err := c.Navigate(ViewChat)
	assert.ErrorIs(t, err, common.ErrActionOnlyView)
	_, err = c.Navigate(ViewFeedback)
	assert.ErrorIs(t, err, common.ErrActionOnlyView)
	_, err = c.Navigate(ViewOnboarding)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
	_, err = c.Navigate(ViewVerify)
	assert.ErrorIs(t, err, common.ErrAlreadyVerified)
	assert.Equal(t, ViewHome, c.View())
}

func TestCompleteOnboardingAwardsTenPoints(t *testing.T) {
	c, store, ledger, leaves := newTestController(t)

	out, err := c.CompleteOnboarding(ProfileForm{Name: " Rahul ", Institution: "IIT Delhi", City: "Delhi"})
	require.NoError(t, err)

	assert.Equal(t, ViewVerify, out.View)
	require.Len(t, out.Awards, 1)
	assert.Equal(t, 10, ledger.Stats().Points)
	assert.Equal(t, rewards.TagBookStarter, ledger.Stats().Tag)

	p, ok := store.Profile()
	require.True(t, ok)
	assert.Equal(t, "Rahul", p.Name)
	assert.Equal(t, []leave{{ViewOnboarding, ViewVerify}}, *leaves)

	_, err = c.CompleteOnboarding(ProfileForm{Name: "Again", Institution: "X", City: "Y"})
	assert.ErrorIs(t, err, common.ErrProfileAlreadySet)
	assert.Equal(t, 10, ledger.Stats().Points)
}

func TestCompleteOnboardingRequiresFields(t *testing.T) {
	c, store, ledger, _ := newTestController(t)

	_, err := c.CompleteOnboarding(ProfileForm{Name: "Rahul", Institution: "  ", City: "Delhi"})
	assert.ErrorIs(t, err, common.ErrFieldRequired)
	assert.Equal(t, ViewOnboarding, c.View())
	assert.Zero(t, ledger.Stats().Points)
	_, ok := store.Profile()
	assert.False(t, ok)
}

func TestVerifyRequiresInstitutionalEmail(t *testing.T) {
	c, store, _, _ := newTestController(t)
	_, err := c.CompleteOnboarding(ProfileForm{Name: "Rahul", Institution: "IIT", City: "Delhi"})
	require.NoError(t, err)

	for _, email := range []string{"rahul@gmail.com", "not-an-email", ""} {
		_, err := c.Verify(email)
		assert.ErrorIs(t, err, common.ErrEmailNotInstitutional, email)
		assert.False(t, store.Verified())
		assert.Equal(t, ViewVerify, c.View())
	}

	out, err := c.Verify("Rahul@Campus.EDU")
	require.NoError(t, err)
	assert.Equal(t, ViewHome, out.View)
	assert.True(t, store.Verified())

	_, err = c.Verify("rahul@campus.edu")
	assert.ErrorIs(t, err, common.ErrAlreadyVerified)
}

func TestVerifyGrantsNoPoints(t *testing.T) {
	c, _, ledger := verifiedController(t)
	assert.Equal(t, 10, ledger.Stats().Points)
	assert.Equal(t, ViewHome, c.View())
}

func TestContentActionsRequireVerification(t *testing.T) {
	c, _, ledger, _ := newTestController(t)

	_, err := c.PostRequest(RequestForm{Title: "Calc", Subject: "Math", Image: "photo"})
	assert.ErrorIs(t, err, common.ErrNotVerified)
	_, err = c.PostListing(ListingForm{Title: "Calc", Mode: catalog.ModeDonate})
	assert.ErrorIs(t, err, common.ErrNotVerified)
	_, err = c.SubmitFeedback(FeedbackForm{Stars: 5})
	assert.ErrorIs(t, err, common.ErrNotVerified)
	assert.Zero(t, ledger.Stats().Points)
}

func TestPostRequestPrependsAndAwardsFive(t *testing.T) {
	c, store, ledger := verifiedController(t)
	before := len(store.Requests())

	out, err := c.PostRequest(RequestForm{
		Title:   "Thermodynamics",
		Subject: "Physics",
		Note:    "exam tomorrow",
		Image:   "file-id-1",
	})
	require.NoError(t, err)

	assert.Equal(t, ViewMatches, out.View)
	requests := store.Requests()
	require.Len(t, requests, before+1)
	assert.Equal(t, "Thermodynamics", requests[0].Title)
	assert.Equal(t, "Rahul", requests[0].RequesterName)
	assert.Equal(t, DefaultExamType, requests[0].ExamType)
	assert.Equal(t, catalog.UrgencyMedium, requests[0].Urgency)
	assert.Equal(t, RequestDistance, requests[0].Distance)
	assert.Equal(t, fixedNow, requests[0].CreatedAt)
	require.NotNil(t, out.Request)
	assert.Equal(t, requests[0].ID, out.Request.ID)
	assert.Equal(t, 15, ledger.Stats().Points)
}

func TestPostRequestWithoutPhotoChangesNothing(t *testing.T) {
	c, store, ledger := verifiedController(t)
	before := store.Requests()

	_, err := c.PostRequest(RequestForm{Title: "Thermodynamics", Subject: "Physics"})
	assert.ErrorIs(t, err, common.ErrPhotoRequired)
	assert.Equal(t, before, store.Requests())
	assert.Equal(t, 10, ledger.Stats().Points)
	assert.Equal(t, ViewHome, c.View())
}

func TestPostListingDonateAwardsThirtyAndCountsDonation(t *testing.T) {
	c, store, ledger := verifiedController(t)

	out, err := c.PostListing(ListingForm{Title: "Organic Chemistry", Mode: catalog.ModeDonate})
	require.NoError(t, err)

	assert.Equal(t, ViewMatches, out.View)
	stats := ledger.Stats()
	assert.Equal(t, 40, stats.Points)
	assert.Equal(t, 1, stats.BooksDonated)

	l := store.Listings("")[0]
	assert.Equal(t, "Organic Chemistry", l.Title)
	assert.Nil(t, l.Price)
	assert.True(t, l.IsVerified)
	assert.Equal(t, catalog.ConditionGood, l.Condition)
	assert.Equal(t, DefaultListingImage, l.Image)
	assert.Equal(t, ListingDistance, l.Distance)
	assert.Contains(t, l.ID, catalog.ListingIDPrefix)
}

func TestPostListingBuyAwardsTenWithoutCounters(t *testing.T) {
	c, store, ledger := verifiedController(t)
	price := 12

	_, err := c.PostListing(ListingForm{
		Title:     "Macro 101",
		Mode:      catalog.ModeBuy,
		Condition: catalog.ConditionNew,
		MRP:       20,
		Price:     &price,
	})
	require.NoError(t, err)

	stats := ledger.Stats()
	assert.Equal(t, 20, stats.Points)
	assert.Zero(t, stats.BooksDonated)
	assert.Zero(t, stats.BooksLent)
	assert.Zero(t, stats.SuccessfulExchanges)

	l := store.Listings(catalog.ModeBuy)[0]
	require.NotNil(t, l.Price)
	assert.Equal(t, 12, *l.Price)
	assert.True(t, l.HasPrice())
}

func TestPostListingBuyRequiresPrice(t *testing.T) {
	c, _, ledger := verifiedController(t)

	_, err := c.PostListing(ListingForm{Title: "Macro 101", Mode: catalog.ModeBuy})
	assert.ErrorIs(t, err, common.ErrFieldRequired)
	assert.Equal(t, 10, ledger.Stats().Points)
}

func TestPostListingNonBuyDropsPrice(t *testing.T) {
	c, store, _ := verifiedController(t)
	price := 99

	_, err := c.PostListing(ListingForm{Title: "Stats", Mode: catalog.ModeBorrow, Price: &price})
	require.NoError(t, err)
	assert.Nil(t, store.Listings(catalog.ModeBorrow)[0].Price)
}

func TestSelectListingOpensChatWithoutPoints(t *testing.T) {
	c, store, ledger := verifiedController(t)
	l := store.Listings("")[0]

	out, err := c.SelectListingForChat(l)
	require.NoError(t, err)
	assert.Equal(t, ViewChat, out.View)
	assert.Empty(t, out.Awards)
	assert.Equal(t, l.OwnerName, c.Coordination().Name())
	assert.Equal(t, l.Title, c.Coordination().Title())
	assert.Equal(t, 10, ledger.Stats().Points)
}

func TestFeedbackFlowAwardsTwentyAndCountsExchange(t *testing.T) {
	c, store, ledger := verifiedController(t)
	r := store.Requests()[0]

	out, err := c.FulfillRequest(r)
	require.NoError(t, err)
	assert.Equal(t, ViewFeedback, out.View)
	assert.Equal(t, 10, ledger.Stats().Points)
	assert.Equal(t, r.RequesterName, c.Coordination().Name())

	out, err = c.SubmitFeedback(FeedbackForm{Stars: 4, Reactions: []string{"Helpful"}, Comment: "Quick handoff"})
	require.NoError(t, err)

	assert.Equal(t, ViewHome, out.View)
	require.Len(t, out.Awards, 2)
	assert.Equal(t, 25, out.Awards[0].After.Points)
	assert.Equal(t, 30, out.Awards[1].After.Points)

	stats := ledger.Stats()
	assert.Equal(t, 30, stats.Points)
	assert.Equal(t, 1, stats.SuccessfulExchanges)

	fb := c.Feedback()
	require.Len(t, fb, 1)
	assert.Equal(t, r.Title, fb[0].BookTitle)
	assert.Equal(t, []string{"Quick handoff"}, c.FeedbackComments())
	avg, ok := c.AverageRating()
	require.True(t, ok)
	assert.InDelta(t, 4.0, avg, 0.001)

	// контекст очищается после отзыва
	assert.Equal(t, Coordination{}, c.Coordination())
}

func TestSubmitFeedbackRequiresRating(t *testing.T) {
	c, _, ledger := verifiedController(t)

	_, err := c.SubmitFeedback(FeedbackForm{Stars: 0, Comment: "great"})
	assert.ErrorIs(t, err, common.ErrRatingRequired)
	_, err = c.SubmitFeedback(FeedbackForm{Stars: 6})
	assert.ErrorIs(t, err, common.ErrFieldInvalid)
	_, err = c.SubmitFeedback(FeedbackForm{Stars: 3, Reactions: []string{"Rude"}})
	assert.ErrorIs(t, err, common.ErrFieldInvalid)

	assert.Equal(t, 10, ledger.Stats().Points)
	assert.Empty(t, c.Feedback())
}

func TestSubmitFeedbackWithoutContextUsesFallbacks(t *testing.T) {
	c, _, _ := verifiedController(t)

	assert.Equal(t, FallbackCounterpart, c.Coordination().Name())
	assert.Equal(t, FallbackBookTitle, c.Coordination().Title())

	_, err := c.SubmitFeedback(FeedbackForm{Stars: 5})
	require.NoError(t, err)
	fb := c.Feedback()
	require.Len(t, fb, 1)
	assert.Equal(t, "Student", fb[0].Counterpart)
	assert.Equal(t, "Book", fb[0].BookTitle)
}

func TestCommentLongerThanLimitRejected(t *testing.T) {
	c, _, _ := verifiedController(t)
	long := make([]byte, CommentMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}

	_, err := c.SubmitFeedback(FeedbackForm{Stars: 5, Comment: string(long)})
	assert.ErrorIs(t, err, common.ErrFieldTooLong)
}

func TestTargetTable(t *testing.T) {
	tests := []struct {
		action Action
		want   View
	}{
		{ActCompleteOnboarding, ViewVerify},
		{ActVerify, ViewHome},
		{ActPostRequest, ViewMatches},
		{ActPostListing, ViewMatches},
		{ActSelectListing, ViewChat},
		{ActFulfillRequest, ViewFeedback},
		{ActSubmitFeedback, ViewHome},
	}
	for _, tt := range tests {
		got, ok := Target(tt.action)
		require.True(t, ok, tt.action)
		assert.Equal(t, tt.want, got, tt.action)
	}
	_, ok := Target(Action("teleport"))
	assert.False(t, ok)
}
