// Package workflow — controller.go ведёт пользователя по экранам:
// онбординг → верификация → просмотр → действие → чат/отзыв.
// Только контроллер читает каталог и вызывает начисление очков.
package workflow

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/rewards"
	"needbook.app/telegram-bot/internal/metrics"
	"needbook.app/telegram-bot/internal/validation"
)

// Options — необязательные настройки контроллера.
type Options struct {
	EmailMarker string              // Что должен содержать email (по умолчанию ".edu")
	Now         func() time.Time    // Часы (для тестов)
	OnLeave     func(from, to View) // Вызывается при смене экрана
	Logger      *log.Entry          // Логгер с полями сессии
}

// Outcome — результат действия: новый экран и начисления.
type Outcome struct {
	View    View
	Awards  []rewards.AwardResult
	Request *catalog.BookRequest
	Listing *catalog.BookListing
}

// Controller — автомат экранов одной сессии.
type Controller struct {
	store    *catalog.Store
	ledger   *rewards.Ledger
	validate *validation.Validator

	emailMarker string
	now         func() time.Time
	onLeave     func(from, to View)
	logger      *log.Entry

	view     View
	coord    *Coordination
	feedback []FeedbackRecord
}

// NewController создаёт контроллер в состоянии onboarding.
func NewController(store *catalog.Store, ledger *rewards.Ledger, v *validation.Validator, opts Options) *Controller {
	c := &Controller{
		store:       store,
		ledger:      ledger,
		validate:    v,
		emailMarker: opts.EmailMarker,
		now:         opts.Now,
		onLeave:     opts.OnLeave,
		logger:      opts.Logger,
		view:        ViewOnboarding,
	}
	if c.emailMarker == "" {
		c.emailMarker = ".edu"
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = log.NewEntry(log.StandardLogger())
	}
	if c.validate == nil {
		c.validate = validation.New()
	}
	return c
}

// View возвращает текущий экран с учётом guard верификации.
func (c *Controller) View() View {
	return Gate(c.view, c.store.Verified())
}

// Navigate переходит на экран навигации.
// chat и feedback открываются только действием, в onboarding вернуться нельзя.
func (c *Controller) Navigate(target View) (View, error) {
	switch {
	case target == ViewOnboarding:
		return c.View(), common.ErrInvalidTransition
	case target == ViewChat || target == ViewFeedback:
		return c.View(), common.ErrActionOnlyView
	case target == ViewVerify:
		if c.store.Verified() {
			return c.View(), common.ErrAlreadyVerified
		}
	case !target.IsNav():
		return c.View(), common.ErrInvalidTransition
	}

	effective := Gate(target, c.store.Verified())
	if effective != target {
		metrics.GateRedirects.Inc()
		c.logger.WithFields(log.Fields{
			"view":   target,
			"target": effective,
		}).Debug("Переход перенаправлен на верификацию")
	}
	c.setView(effective)
	return effective, nil
}

// CompleteOnboarding сохраняет профиль, начисляет +10 и ведёт на верификацию.
func (c *Controller) CompleteOnboarding(form ProfileForm) (Outcome, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Institution = strings.TrimSpace(form.Institution)
	form.City = strings.TrimSpace(form.City)
	form.Campus = strings.TrimSpace(form.Campus)

	if err := c.validate.Validate(form); err != nil {
		return Outcome{View: c.View()}, err
	}
	if err := c.store.SetProfile(catalog.UserProfile{
		Name:        form.Name,
		Institution: form.Institution,
		City:        form.City,
		Campus:      form.Campus,
	}); err != nil {
		return Outcome{View: c.View()}, err
	}

	out := Outcome{Awards: []rewards.AwardResult{c.award(rewards.EventOnboardingCompleted)}}
	out.View = c.apply(ActCompleteOnboarding)
	return out, nil
}

// Verify проверяет email и открывает доступ к контенту.
func (c *Controller) Verify(email string) (Outcome, error) {
	if c.store.Verified() {
		return Outcome{View: c.View()}, common.ErrAlreadyVerified
	}

	form := VerifyForm{Email: strings.TrimSpace(email)}
	if err := c.validate.Validate(form); err != nil {
		return Outcome{View: c.View()}, fmt.Errorf("%w: %v", common.ErrEmailNotInstitutional, err)
	}
	if !strings.Contains(strings.ToLower(form.Email), strings.ToLower(c.emailMarker)) {
		return Outcome{View: c.View()}, common.ErrEmailNotInstitutional
	}

	c.store.MarkVerified()
	c.logger.Info("Студенческий email подтверждён")
	return Outcome{View: c.apply(ActVerify)}, nil
}

// PostRequest создаёт запрос книги, начисляет +5 и ведёт на matches.
func (c *Controller) PostRequest(form RequestForm) (Outcome, error) {
	if err := c.requireVerified(); err != nil {
		return Outcome{View: c.View()}, err
	}
	if err := c.validate.Validate(form); err != nil {
		return Outcome{View: c.View()}, err
	}
	if strings.TrimSpace(form.Image) == "" {
		return Outcome{View: c.View()}, common.ErrPhotoRequired
	}

	now := c.now()
	id, err := catalog.NewRequestID(now)
	if err != nil {
		return Outcome{View: c.View()}, fmt.Errorf("ошибка создания id запроса: %w", err)
	}

	req := catalog.BookRequest{
		ID:                id,
		RequesterName:     c.displayName(),
		Title:             strings.TrimSpace(form.Title),
		Subject:           strings.TrimSpace(form.Subject),
		ExamType:          common.FirstNonEmpty(form.ExamType, DefaultExamType),
		Urgency:           form.Urgency,
		Distance:          RequestDistance,
		Note:              form.Note,
		Image:             form.Image,
		PreferredDate:     form.PreferredDate,
		PreferredTime:     form.PreferredTime,
		PreferredLocation: form.PreferredLocation,
		ContactNumber:     form.ContactNumber,
		AdditionalContact: form.AdditionalContact,
		CreatedAt:         now,
	}
	if req.Urgency == "" {
		req.Urgency = catalog.UrgencyMedium
	}
	c.store.PrependRequest(req)

	out := Outcome{
		Awards:  []rewards.AwardResult{c.award(rewards.EventRequestPosted)},
		Request: &req,
	}
	out.View = c.apply(ActPostRequest)
	return out, nil
}

// PostListing создаёт объявление. Donate даёт +30 и booksDonated, остальное +10.
func (c *Controller) PostListing(form ListingForm) (Outcome, error) {
	if err := c.requireVerified(); err != nil {
		return Outcome{View: c.View()}, err
	}
	if err := c.validate.Validate(form); err != nil {
		return Outcome{View: c.View()}, err
	}

	var price *int
	if form.Mode == catalog.ModeBuy {
		if form.Price == nil {
			return Outcome{View: c.View()}, fmt.Errorf("%w: price", common.ErrFieldRequired)
		}
		p := *form.Price
		price = &p
	}

	id, err := catalog.NewListingID(c.now())
	if err != nil {
		return Outcome{View: c.View()}, fmt.Errorf("ошибка создания id объявления: %w", err)
	}

	listing := catalog.BookListing{
		ID:         id,
		OwnerName:  c.displayName(),
		Title:      strings.TrimSpace(form.Title),
		Author:     strings.TrimSpace(form.Author),
		Condition:  form.Condition,
		Subject:    common.FirstNonEmpty(strings.TrimSpace(form.Subject), "General"),
		Mode:       form.Mode,
		Price:      price,
		MRP:        form.MRP,
		Distance:   ListingDistance,
		IsVerified: c.store.Verified(),
		Image:      common.FirstNonEmpty(form.Image, DefaultListingImage),
	}
	if listing.Condition == "" {
		listing.Condition = catalog.ConditionGood
	}
	c.store.PrependListing(listing)

	event := rewards.EventListingPosted
	if listing.Mode == catalog.ModeDonate {
		event = rewards.EventDonationPosted
	}

	out := Outcome{
		Awards:  []rewards.AwardResult{c.award(event)},
		Listing: &listing,
	}
	out.View = c.apply(ActPostListing)
	return out, nil
}

// SelectListingForChat открывает чат с владельцем объявления. Без начислений.
func (c *Controller) SelectListingForChat(l catalog.BookListing) (Outcome, error) {
	if err := c.requireVerified(); err != nil {
		return Outcome{View: c.View()}, err
	}
	c.coord = &Coordination{
		Source:          SourceListing,
		RefID:           l.ID,
		CounterpartName: l.OwnerName,
		BookTitle:       l.Title,
		Image:           l.Image,
	}
	return Outcome{View: c.apply(ActSelectListing)}, nil
}

// FulfillRequest открывает отзыв по запросу. Очки начисляются только при отправке отзыва.
func (c *Controller) FulfillRequest(r catalog.BookRequest) (Outcome, error) {
	if err := c.requireVerified(); err != nil {
		return Outcome{View: c.View()}, err
	}
	c.coord = &Coordination{
		Source:            SourceRequest,
		RefID:             r.ID,
		CounterpartName:   r.RequesterName,
		BookTitle:         r.Title,
		Image:             r.Image,
		ContactNumber:     r.ContactNumber,
		AdditionalContact: r.AdditionalContact,
	}
	return Outcome{View: c.apply(ActFulfillRequest)}, nil
}

// SubmitFeedback начисляет +15 (successfulExchanges), затем +5 и ведёт на home.
// Содержимое отзыва не влияет на очки, нужна хотя бы одна звезда.
func (c *Controller) SubmitFeedback(form FeedbackForm) (Outcome, error) {
	if err := c.requireVerified(); err != nil {
		return Outcome{View: c.View()}, err
	}
	if form.Stars < 1 {
		return Outcome{View: c.View()}, common.ErrRatingRequired
	}
	if form.Stars > 5 {
		return Outcome{View: c.View()}, fmt.Errorf("%w: stars", common.ErrFieldInvalid)
	}
	if err := c.validate.Validate(form); err != nil {
		return Outcome{View: c.View()}, err
	}

	coord := c.Coordination()
	c.feedback = append(c.feedback, FeedbackRecord{
		Stars:       form.Stars,
		Reactions:   append([]string(nil), form.Reactions...),
		Comment:     strings.TrimSpace(form.Comment),
		Counterpart: coord.Name(),
		BookTitle:   coord.Title(),
		SubmittedAt: c.now(),
	})

	out := Outcome{Awards: []rewards.AwardResult{
		c.award(rewards.EventExchangeCompleted),
		c.award(rewards.EventFeedbackSubmitted),
	}}
	c.coord = nil
	out.View = c.apply(ActSubmitFeedback)
	return out, nil
}

// Coordination возвращает контекст обмена (нулевой, если его нет).
func (c *Controller) Coordination() Coordination {
	if c.coord == nil {
		return Coordination{}
	}
	return *c.coord
}

// Feedback возвращает копию отправленных отзывов.
func (c *Controller) Feedback() []FeedbackRecord {
	out := make([]FeedbackRecord, len(c.feedback))
	copy(out, c.feedback)
	return out
}

// AverageRating — средняя оценка; false, если отзывов нет.
func (c *Controller) AverageRating() (float64, bool) {
	if len(c.feedback) == 0 {
		return 0, false
	}
	sum := 0
	for _, f := range c.feedback {
		sum += f.Stars
	}
	return float64(sum) / float64(len(c.feedback)), true
}

// FeedbackComments — непустые комментарии (для AI-сводки).
func (c *Controller) FeedbackComments() []string {
	var out []string
	for _, f := range c.feedback {
		if f.Comment != "" {
			out = append(out, f.Comment)
		}
	}
	return out
}

// Stats — статистика из движка очков.
func (c *Controller) Stats() rewards.Stats {
	return c.ledger.Stats()
}

func (c *Controller) requireVerified() error {
	if !c.store.Verified() {
		return common.ErrNotVerified
	}
	return nil
}

func (c *Controller) displayName() string {
	if p, ok := c.store.Profile(); ok && p.Name != "" {
		return p.Name
	}
	return DefaultRequesterTag
}

// apply выполняет переход по таблице и возвращает итоговый экран.
func (c *Controller) apply(a Action) View {
	target, ok := Target(a)
	if !ok {
		c.logger.WithField("action", a).Error("Действие без перехода в таблице")
		return c.View()
	}
	c.setView(Gate(target, c.store.Verified()))
	return c.View()
}

func (c *Controller) setView(v View) {
	if v == c.view {
		return
	}
	from := c.view
	c.view = v
	metrics.Transitions.WithLabelValues(string(v)).Inc()
	c.logger.WithFields(log.Fields{
		"from": from,
		"view": v,
	}).Debug("Смена экрана")
	if c.onLeave != nil {
		c.onLeave(from, v)
	}
}

func (c *Controller) award(e rewards.Event) rewards.AwardResult {
	r := c.ledger.AwardEvent(e)

	promoted := ""
	if r.Promoted() {
		promoted = r.After.Tag.String()
	}
	metrics.ObserveAward(string(e), r.After.Points-r.Before.Points, promoted)

	c.logger.WithFields(log.Fields{
		"event":  e,
		"amount": r.After.Points - r.Before.Points,
		"points": r.After.Points,
		"tag":    r.After.Tag.String(),
	}).Info("Очки начислены")
	return r
}
