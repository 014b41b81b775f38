package bot

import (
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/assist"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/workflow"
	"needbook.app/telegram-bot/internal/sessions"
)

// event — входное событие для диалога: текст, фото или нажатие кнопки.
type event struct {
	text  string
	photo string
	kind  string
	value string
}

func (e event) skipped() bool {
	return e.kind == cbSkip
}

// Команды, открывающие экран навигации.
var commandViews = map[string]workflow.View{
	"home":    workflow.ViewHome,
	"request": workflow.ViewRequest,
	"list":    workflow.ViewList,
	"matches": workflow.ViewMatches,
	"rewards": workflow.ViewRewards,
	"buddy":   workflow.ViewBuddy,
	"verify":  workflow.ViewVerify,
}

const historyLimit = 10

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, s *sessions.Session, cmd string, args []string) {
	s.Logger().WithField("cmd", cmd).Debug("routing command")

	if target, ok := commandViews[cmd]; ok {
		b.navigate(ctx, s, target)
		return
	}

	switch cmd {
	case "start":
		b.handleStart(ctx, s)

	case "help":
		b.send(ctx, s, renderHelp(), nil)

	case "history":
		limit := historyLimit
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				limit = n
			}
		}
		b.send(ctx, s, renderHistory(s.Ledger.History(limit), b.loc), nil)

	default:
		b.send(ctx, s, "Unknown command. Try /help", nil)
	}
}

func (b *Bot) handleStart(ctx context.Context, s *sessions.Session) {
	if s.Flow.View() == workflow.ViewOnboarding {
		b.showOnboarding(ctx, s)
		return
	}
	if s.Store.Verified() {
		b.send(ctx, s, "Welcome back to <b>NeedBook</b> 📚", navKeyboard())
	}
	b.show(ctx, s)
}

// navigate переходит на экран через контроллер и показывает итоговый экран.
func (b *Bot) navigate(ctx context.Context, s *sessions.Session, target workflow.View) {
	// Пока профиль не заполнен, из онбординга никуда не уходим
	if s.Flow.View() == workflow.ViewOnboarding {
		b.fail(ctx, s, common.ErrOnboardingIncomplete)
		b.showOnboarding(ctx, s)
		return
	}

	if _, err := s.Flow.Navigate(target); err != nil {
		b.fail(ctx, s, err)
	}
	b.show(ctx, s)
}

// show отрисовывает текущий экран (guard уже применён в Flow.View).
func (b *Bot) show(ctx context.Context, s *sessions.Session) {
	g := glyphsFor(s.Theme)

	switch s.Flow.View() {
	case workflow.ViewOnboarding:
		b.showOnboarding(ctx, s)

	case workflow.ViewVerify:
		b.send(ctx, s, renderVerify(b.cfg.VerifyEmailMarker, g), nil)

	case workflow.ViewHome:
		requests := s.Store.Requests()
		if len(requests) == 0 {
			b.send(ctx, s, renderHome(requests, g), nil)
			return
		}
		b.send(ctx, s, renderHome(requests, g), homeKeyboard(requests))

	case workflow.ViewRequest:
		b.showRequest(ctx, s)

	case workflow.ViewList:
		b.showListing(ctx, s)

	case workflow.ViewMatches:
		b.showMatches(ctx, s, "")

	case workflow.ViewRewards:
		b.showRewards(ctx, s)

	case workflow.ViewFeedback:
		b.showFeedback(ctx, s)

	case workflow.ViewChat:
		b.send(ctx, s, renderChat(s.Flow.Coordination(), s.Chat, b.loc, g), nil)

	case workflow.ViewBuddy:
		b.send(ctx, s, renderBuddyIntro(s.Buddy[0].Text, g), buddyKeyboard())
	}
}

func (b *Bot) showMatches(ctx context.Context, s *sessions.Session, mode catalog.ExchangeMode) {
	listings := s.Store.Listings(mode)
	b.send(ctx, s, renderMatches(listings, mode, glyphsFor(s.Theme)), matchesKeyboard(listings, mode))
}

func (b *Bot) showRewards(ctx context.Context, s *sessions.Session) {
	g := glyphsFor(s.Theme)
	avg, hasAvg := s.Flow.AverageRating()
	comments := s.Flow.FeedbackComments()

	summary := s.Summary
	if len(comments) == 0 || summary == "" {
		summary = assist.FallbackFeedbackNote
	}
	b.send(ctx, s, renderRewards(s.Flow.Stats(), avg, hasAvg, summary, g), nil)

	if len(comments) == 0 || !b.assist.Enabled() {
		return
	}
	runAssist(ctx, b, s, assist.KeySummary,
		func(ctx context.Context) string { return b.assist.SummarizeFeedback(ctx, comments) },
		func(s *sessions.Session, text string) {
			if text == s.Summary {
				return
			}
			s.Summary = text
			b.send(ctx, s, "<b>What students say</b>\n<i>"+esc(text)+"</i>", nil)
		})
}

// routeCallback обрабатывает нажатие inline-кнопки.
func (b *Bot) routeCallback(ctx context.Context, s *sessions.Session, kind, value string) {
	s.Logger().WithFields(log.Fields{
		"kind":  kind,
		"value": value,
	}).Debug("routing callback")

	switch kind {
	case cbFulfill:
		req, err := s.Store.Request(value)
		if err != nil {
			b.fail(ctx, s, err)
			return
		}
		if _, err := s.Flow.FulfillRequest(req); err != nil {
			b.fail(ctx, s, err)
			b.show(ctx, s)
			return
		}
		s.Draft = &feedbackDraft{}
		b.show(ctx, s)

	case cbChat:
		listing, err := s.Store.Listing(value)
		if err != nil {
			b.fail(ctx, s, err)
			return
		}
		if _, err := s.Flow.SelectListingForChat(listing); err != nil {
			b.fail(ctx, s, err)
			b.show(ctx, s)
			return
		}
		s.OpenChat(listing.Title, b.now())
		if listing.Image != "" {
			b.sendPhoto(ctx, s, listing.Image, "📚 <b>"+esc(listing.Title)+"</b>", nil)
		}
		b.show(ctx, s)

	case cbFilter:
		if s.Flow.View() != workflow.ViewMatches {
			b.show(ctx, s)
			return
		}
		mode, ok := catalog.ParseMode(value)
		if !ok || value == filterAll {
			mode = ""
		}
		b.showMatches(ctx, s, mode)

	case cbChip:
		i, err := strconv.Atoi(value)
		if err != nil || i < 0 || i >= len(assist.BuddyChips) {
			return
		}
		if s.Flow.View() != workflow.ViewBuddy {
			b.navigate(ctx, s, workflow.ViewBuddy)
			return
		}
		b.buddyInput(ctx, s, assist.BuddyChips[i])

	default:
		b.handleInput(ctx, s, event{kind: kind, value: value})
	}
}

// handleInput передаёт ввод в диалог текущего экрана.
func (b *Bot) handleInput(ctx context.Context, s *sessions.Session, ev event) {
	ev.text = strings.TrimSpace(ev.text)

	switch s.Flow.View() {
	case workflow.ViewOnboarding:
		b.onboardingInput(ctx, s, ev)
	case workflow.ViewVerify:
		b.verifyInput(ctx, s, ev)
	case workflow.ViewRequest:
		b.requestInput(ctx, s, ev)
	case workflow.ViewList:
		b.listingInput(ctx, s, ev)
	case workflow.ViewFeedback:
		b.feedbackInput(ctx, s, ev)
	case workflow.ViewChat:
		b.chatInput(ctx, s, ev)
	case workflow.ViewBuddy:
		if ev.text != "" {
			b.buddyInput(ctx, s, ev.text)
		}
	default:
		if ev.kind == "" {
			b.send(ctx, s, "Use the menu below or /help to get around.", navKeyboard())
		}
	}
}
