package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/assist"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/rewards"
	"needbook.app/telegram-bot/internal/features/workflow"
	"needbook.app/telegram-bot/internal/sessions"
)

// ---------- Онбординг ----------

const onboardingCampusStep = 3

type onboardingDraft struct {
	step int
	form workflow.ProfileForm
}

func (b *Bot) showOnboarding(ctx context.Context, s *sessions.Session) {
	d, ok := s.Draft.(*onboardingDraft)
	if !ok {
		d = &onboardingDraft{}
		s.Draft = d
	}
	b.promptOnboarding(ctx, s, d)
}

func (b *Bot) promptOnboarding(ctx context.Context, s *sessions.Session, d *onboardingDraft) {
	var markup telego.ReplyMarkup
	if d.step == onboardingCampusStep {
		markup = skipKeyboard("Skip")
	}
	b.send(ctx, s, renderOnboardingPrompt(d.step, glyphsFor(s.Theme)), markup)
}

func (b *Bot) onboardingInput(ctx context.Context, s *sessions.Session, ev event) {
	d, ok := s.Draft.(*onboardingDraft)
	if !ok {
		b.showOnboarding(ctx, s)
		return
	}

	if ev.text == "" && !(ev.skipped() && d.step == onboardingCampusStep) {
		b.promptOnboarding(ctx, s, d)
		return
	}

	switch d.step {
	case 0:
		d.form.Name = ev.text
	case 1:
		d.form.Institution = ev.text
	case 2:
		d.form.City = ev.text
	case onboardingCampusStep:
		d.form.Campus = ev.text
	}

	if d.step < onboardingCampusStep {
		d.step++
		b.promptOnboarding(ctx, s, d)
		return
	}

	out, err := s.Flow.CompleteOnboarding(d.form)
	if err != nil {
		b.fail(ctx, s, err)
		s.Draft = &onboardingDraft{}
		b.showOnboarding(ctx, s)
		return
	}

	b.announce(ctx, s, out.Awards)
	b.show(ctx, s)
}

// ---------- Верификация ----------

func (b *Bot) verifyInput(ctx context.Context, s *sessions.Session, ev event) {
	if ev.text == "" {
		b.show(ctx, s)
		return
	}

	if _, err := s.Flow.Verify(ev.text); err != nil {
		b.fail(ctx, s, err)
		return
	}

	b.send(ctx, s, "✅ You're verified! Welcome to the campus exchange.", navKeyboard())
	b.show(ctx, s)
}

// ---------- Запрос книги ----------

type requestStep int

const (
	reqTitle requestStep = iota
	reqSubject
	reqExam
	reqNote
	reqUrgency
	reqMeetup
	reqContact
	reqPhoto
)

// Подсказка предметов только для названий длиннее этого порога.
const subjectHintMinTitle = 5

type requestDraft struct {
	step      requestStep
	form      workflow.RequestForm
	subjects  []string
	suggested catalog.Urgency
}

func (b *Bot) showRequest(ctx context.Context, s *sessions.Session) {
	d, ok := s.Draft.(*requestDraft)
	if !ok {
		d = &requestDraft{}
		s.Draft = d
	}
	b.promptRequest(ctx, s, d)
}

func (b *Bot) promptRequest(ctx context.Context, s *sessions.Session, d *requestDraft) {
	switch d.step {
	case reqTitle:
		b.send(ctx, s, header(workflow.ViewRequest, glyphsFor(s.Theme))+"Which book do you need? (e.g. Campbell Biology)", nil)
	case reqSubject:
		if len(d.subjects) > 0 {
			b.send(ctx, s, "Which subject? Pick one or type your own.", subjectKeyboard(d.subjects))
			return
		}
		b.send(ctx, s, "Which subject? (e.g. Life Sciences)", nil)
	case reqExam:
		b.send(ctx, s, "Exam type?", examKeyboard())
	case reqNote:
		b.send(ctx, s, "Optional note: tell us why you need it urgently.", skipKeyboard("Skip"))
	case reqUrgency:
		b.send(ctx, s, "Urgency?", urgencyKeyboard(d.suggested))
	case reqMeetup:
		b.send(ctx, s, "Preferred handover as <code>date, time, spot</code>\ne.g. <code>Fri, 4pm, Library Entrance</code>", skipKeyboard("Flexible"))
	case reqContact:
		b.send(ctx, s, "Contact number? Only the student who helps you will see it.\nAdd an alternate after a slash: <code>+1 555 0100 / +1 555 0101</code>", skipKeyboard("Skip"))
	case reqPhoto:
		b.send(ctx, s, "📷 Send a photo of the book to post your request.", postKeyboard("Post Request", "request"))
	}
}

func (b *Bot) requestInput(ctx context.Context, s *sessions.Session, ev event) {
	d, ok := s.Draft.(*requestDraft)
	if !ok {
		b.showRequest(ctx, s)
		return
	}

	switch d.step {
	case reqTitle:
		if ev.text == "" {
			b.promptRequest(ctx, s, d)
			return
		}
		d.form.Title = ev.text
		d.subjects = nil
		d.step = reqSubject
		if len([]rune(ev.text)) > subjectHintMinTitle {
			b.suggestSubjects(ctx, s, ev.text)
		}

	case reqSubject:
		switch {
		case ev.kind == cbSubject:
			i, err := strconv.Atoi(ev.value)
			if err != nil || i < 0 || i >= len(d.subjects) {
				b.promptRequest(ctx, s, d)
				return
			}
			d.form.Subject = d.subjects[i]
		case ev.text != "":
			d.form.Subject = ev.text
		default:
			b.promptRequest(ctx, s, d)
			return
		}
		d.step = reqExam

	case reqExam:
		switch {
		case ev.kind == cbExam:
			d.form.ExamType = ev.value
		case ev.text != "":
			d.form.ExamType = ev.text
		default:
			b.promptRequest(ctx, s, d)
			return
		}
		d.step = reqNote

	case reqNote:
		if ev.text == "" && !ev.skipped() {
			b.promptRequest(ctx, s, d)
			return
		}
		d.form.Note = ev.text
		d.step = reqUrgency
		if ev.text != "" {
			b.checkUrgency(ctx, s, ev.text)
		}

	case reqUrgency:
		value := ev.text
		if ev.kind == cbUrgency {
			value = ev.value
		}
		switch {
		case strings.EqualFold(value, string(catalog.UrgencyHigh)):
			d.form.Urgency = catalog.UrgencyHigh
		case strings.EqualFold(value, string(catalog.UrgencyMedium)):
			d.form.Urgency = catalog.UrgencyMedium
		default:
			b.promptRequest(ctx, s, d)
			return
		}
		d.step = reqMeetup

	case reqMeetup:
		if ev.text != "" {
			parts := strings.SplitN(ev.text, ",", 3)
			fields := []*string{&d.form.PreferredDate, &d.form.PreferredTime, &d.form.PreferredLocation}
			for i, p := range parts {
				*fields[i] = strings.TrimSpace(p)
			}
		} else if !ev.skipped() {
			b.promptRequest(ctx, s, d)
			return
		}
		d.step = reqContact

	case reqContact:
		if ev.text != "" {
			primary, extra, _ := strings.Cut(ev.text, "/")
			d.form.ContactNumber = strings.TrimSpace(primary)
			d.form.AdditionalContact = strings.TrimSpace(extra)
		} else if !ev.skipped() {
			b.promptRequest(ctx, s, d)
			return
		}
		d.step = reqPhoto

	case reqPhoto:
		if ev.photo != "" {
			d.form.Image = ev.photo
		}
		b.postRequest(ctx, s, d)
		return
	}

	b.promptRequest(ctx, s, d)
}

func (b *Bot) postRequest(ctx context.Context, s *sessions.Session, d *requestDraft) {
	out, err := s.Flow.PostRequest(d.form)
	if err != nil {
		b.fail(ctx, s, err)
		if !errors.Is(err, common.ErrPhotoRequired) {
			// Ошибка в полях — начинаем форму заново
			s.Draft = &requestDraft{}
			b.showRequest(ctx, s)
		}
		return
	}

	s.Draft = nil
	b.send(ctx, s, fmt.Sprintf("📚 Request for <b>%s</b> posted! Classmates nearby can see it now.", esc(out.Request.Title)), nil)
	b.announce(ctx, s, out.Awards)
	b.show(ctx, s)
}

func (b *Bot) suggestSubjects(ctx context.Context, s *sessions.Session, title string) {
	runAssist(ctx, b, s, assist.KeySubjects,
		func(ctx context.Context) assist.SubjectSuggestion { return b.assist.SuggestSubjects(ctx, title) },
		func(s *sessions.Session, sug assist.SubjectSuggestion) {
			d, ok := s.Draft.(*requestDraft)
			if !ok || d.step != reqSubject || d.form.Title != title || len(sug.Subjects) == 0 {
				return
			}
			d.subjects = sug.Subjects
			text := "✨ Suggested subjects"
			if sug.Description != "" && sug.Description != assist.FallbackDescription {
				text += "\n<i>" + esc(sug.Description) + "</i>"
			}
			b.send(ctx, s, text, subjectKeyboard(sug.Subjects))
		})
}

func (b *Bot) checkUrgency(ctx context.Context, s *sessions.Session, note string) {
	runAssist(ctx, b, s, assist.KeyUrgency,
		func(ctx context.Context) catalog.Urgency { return b.assist.CheckUrgency(ctx, note) },
		func(s *sessions.Session, u catalog.Urgency) {
			d, ok := s.Draft.(*requestDraft)
			if !ok || d.step != reqUrgency || d.form.Note != note {
				return
			}
			d.suggested = u
			b.send(ctx, s, fmt.Sprintf("✨ Sounds like <b>%s</b> urgency.", u), urgencyKeyboard(u))
		})
}

// ---------- Объявление ----------

type listingStep int

const (
	lstMode listingStep = iota
	lstTitle
	lstAuthor
	lstSubject
	lstCondition
	lstMRP
	lstPrice
	lstPhoto
)

type listingDraft struct {
	step       listingStep
	form       workflow.ListingForm
	suggestion *assist.PriceSuggestion
}

func (b *Bot) showListing(ctx context.Context, s *sessions.Session) {
	d, ok := s.Draft.(*listingDraft)
	if !ok {
		d = &listingDraft{}
		s.Draft = d
	}
	b.promptListing(ctx, s, d)
}

func (b *Bot) promptListing(ctx context.Context, s *sessions.Session, d *listingDraft) {
	switch d.step {
	case lstMode:
		b.send(ctx, s, header(workflow.ViewList, glyphsFor(s.Theme))+"What would you like to do with your book?", modeKeyboard())
	case lstTitle:
		b.send(ctx, s, "Book title? (e.g. Modern Physics)", nil)
	case lstAuthor:
		b.send(ctx, s, "Author name? (e.g. Richard Feynman)", skipKeyboard("Skip"))
	case lstSubject:
		b.send(ctx, s, "Subject / course? (e.g. PHY201)", skipKeyboard("Skip"))
	case lstCondition:
		b.send(ctx, s, "Condition?", conditionKeyboard())
	case lstMRP:
		b.send(ctx, s, "MRP (original price) in $? (e.g. 800)", nil)
	case lstPrice:
		b.send(ctx, s, "Assistant is calculating fair price...", nil)
	case lstPhoto:
		label := "Post Listing"
		switch d.form.Mode {
		case catalog.ModeBuy:
			label = "List for Sale"
		case catalog.ModeDonate:
			label = "Post Free Donation"
		}
		b.send(ctx, s, "📷 Send a photo of the book, or post without one.", postKeyboard(label, "listing"))
	}
}

func (b *Bot) listingInput(ctx context.Context, s *sessions.Session, ev event) {
	d, ok := s.Draft.(*listingDraft)
	if !ok {
		b.showListing(ctx, s)
		return
	}

	switch d.step {
	case lstMode:
		value := ev.text
		if ev.kind == cbMode {
			value = ev.value
		}
		mode, ok := catalog.ParseMode(value)
		if !ok {
			b.promptListing(ctx, s, d)
			return
		}
		d.form.Mode = mode
		d.step = lstTitle

	case lstTitle:
		if ev.text == "" {
			b.promptListing(ctx, s, d)
			return
		}
		d.form.Title = ev.text
		d.step = lstAuthor

	case lstAuthor:
		if ev.text == "" && !ev.skipped() {
			b.promptListing(ctx, s, d)
			return
		}
		d.form.Author = ev.text
		d.step = lstSubject

	case lstSubject:
		if ev.text == "" && !ev.skipped() {
			b.promptListing(ctx, s, d)
			return
		}
		d.form.Subject = ev.text
		d.step = lstCondition

	case lstCondition:
		value := ev.text
		if ev.kind == cbCond {
			value = ev.value
		}
		cond, ok := catalog.ParseCondition(value)
		if !ok {
			b.promptListing(ctx, s, d)
			return
		}
		d.form.Condition = cond
		// Цена нужна только при продаже
		d.step = lstPhoto
		if d.form.Mode == catalog.ModeBuy {
			d.step = lstMRP
		}

	case lstMRP:
		mrp, err := strconv.Atoi(strings.TrimPrefix(ev.text, "$"))
		if err != nil || mrp <= 0 {
			b.send(ctx, s, "Please send the original price as a number, e.g. 800", nil)
			return
		}
		d.form.MRP = mrp
		d.step = lstPrice
		b.suggestPrice(ctx, s, d.form.Title, mrp, d.form.Condition)

	case lstPrice:
		// Цена фиксируется рекомендацией, ждём её

	case lstPhoto:
		if ev.photo != "" {
			d.form.Image = ev.photo
		} else if ev.kind != cbPost {
			b.promptListing(ctx, s, d)
			return
		}
		b.postListing(ctx, s, d)
		return
	}

	b.promptListing(ctx, s, d)
}

func (b *Bot) postListing(ctx context.Context, s *sessions.Session, d *listingDraft) {
	out, err := s.Flow.PostListing(d.form)
	if err != nil {
		b.fail(ctx, s, err)
		s.Draft = &listingDraft{}
		b.showListing(ctx, s)
		return
	}

	s.Draft = nil
	text := fmt.Sprintf("✅ <b>%s</b> is listed!", esc(out.Listing.Title))
	if out.Listing.Mode == catalog.ModeDonate {
		text = fmt.Sprintf("Awesome Choice! 🎁 <b>%s</b> is up for donation.", esc(out.Listing.Title))
	}
	b.send(ctx, s, text, nil)
	b.announce(ctx, s, out.Awards)
	b.show(ctx, s)
}

func (b *Bot) suggestPrice(ctx context.Context, s *sessions.Session, title string, mrp int, cond catalog.Condition) {
	runAssist(ctx, b, s, assist.KeyPrice,
		func(ctx context.Context) assist.PriceSuggestion {
			return b.assist.SuggestFairPrice(ctx, mrp, cond, title)
		},
		func(s *sessions.Session, sug assist.PriceSuggestion) {
			d, ok := s.Draft.(*listingDraft)
			if !ok || d.step != lstPrice || d.form.MRP != mrp {
				return
			}
			price := sug.SuggestedPrice
			d.form.Price = &price
			d.suggestion = &sug
			d.step = lstPhoto
			b.send(ctx, s, fmt.Sprintf("💡 Fair price: <b>$%d</b> (locked)\n<i>%s</i>", price, esc(sug.Advice)), nil)
			b.promptListing(ctx, s, d)
		})
}

// ---------- Отзыв ----------

type feedbackDraft struct {
	form workflow.FeedbackForm
}

func (b *Bot) showFeedback(ctx context.Context, s *sessions.Session) {
	d, ok := s.Draft.(*feedbackDraft)
	if !ok {
		d = &feedbackDraft{}
		s.Draft = d
	}
	b.send(ctx, s, renderFeedback(s.Flow.Coordination(), d.form, glyphsFor(s.Theme)), feedbackKeyboard(d.form))
}

func (b *Bot) feedbackInput(ctx context.Context, s *sessions.Session, ev event) {
	d, ok := s.Draft.(*feedbackDraft)
	if !ok {
		b.showFeedback(ctx, s)
		return
	}

	switch {
	case ev.kind == cbStar:
		n, err := strconv.Atoi(ev.value)
		if err != nil || n < 1 || n > 5 {
			return
		}
		d.form.Stars = n

	case ev.kind == cbReact:
		i, err := strconv.Atoi(ev.value)
		if err != nil || i < 0 || i >= len(workflow.QuickReactions) {
			return
		}
		d.form.Reactions = toggle(d.form.Reactions, workflow.QuickReactions[i])

	case ev.kind == cbSubmit:
		b.submitFeedback(ctx, s, d)
		return

	case ev.text != "":
		if len([]rune(ev.text)) > workflow.CommentMaxLength {
			b.send(ctx, s, fmt.Sprintf("Comments are limited to %d characters.", workflow.CommentMaxLength), nil)
			return
		}
		d.form.Comment = ev.text

	default:
		return
	}

	b.showFeedback(ctx, s)
}

func (b *Bot) submitFeedback(ctx context.Context, s *sessions.Session, d *feedbackDraft) {
	out, err := s.Flow.SubmitFeedback(d.form)
	if err != nil {
		b.fail(ctx, s, err)
		return
	}

	s.Draft = nil
	b.send(ctx, s, "🙏 Thanks for the feedback! It helps keep the campus exchange trustworthy.", nil)
	b.announce(ctx, s, out.Awards)
	b.show(ctx, s)
}

func toggle(list []string, v string) []string {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, x := range list {
		if x == v {
			found = true
			continue
		}
		out = append(out, x)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

// ---------- Чат ----------

func (b *Bot) chatInput(ctx context.Context, s *sessions.Session, ev event) {
	if ev.text == "" {
		b.show(ctx, s)
		return
	}
	s.Chat = append(s.Chat, sessions.ChatLine{FromMe: true, Text: ev.text, At: b.now()})
	b.show(ctx, s)
}

// ---------- Buddy ----------

func (b *Bot) buddyInput(ctx context.Context, s *sessions.Session, text string) {
	// Пока Buddy отвечает, новое сообщение не принимаем
	if s.Tasks.Busy(assist.KeyBuddy) {
		b.send(ctx, s, "Buddy is still typing... please wait a moment.", nil)
		return
	}

	prior := make([]assist.Turn, len(s.Buddy))
	copy(prior, s.Buddy)
	s.Buddy = append(s.Buddy, assist.Turn{Role: assist.RoleUser, Text: text})

	runAssist(ctx, b, s, assist.KeyBuddy,
		func(ctx context.Context) string { return b.assist.BuddyReply(ctx, text, prior) },
		func(s *sessions.Session, reply string) {
			s.Buddy = append(s.Buddy, assist.Turn{Role: assist.RoleModel, Text: reply})
			b.send(ctx, s, "🤖 "+esc(reply), buddyKeyboard())
		})
}

// ---------- Начисления ----------

func (b *Bot) announce(ctx context.Context, s *sessions.Session, awards []rewards.AwardResult) {
	if text := renderAwards(awards); text != "" {
		b.send(ctx, s, text, nil)
	}
}
