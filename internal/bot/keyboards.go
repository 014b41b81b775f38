package bot

import (
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/assist"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/workflow"
)

// Кнопки нижней навигации.
var navButtons = []struct {
	Text string
	View workflow.View
}{
	{"🏠 Home", workflow.ViewHome},
	{"📚 Request", workflow.ViewRequest},
	{"➕ List", workflow.ViewList},
	{"🔍 Matches", workflow.ViewMatches},
	{"🏆 Rewards", workflow.ViewRewards},
	{"🤖 Buddy", workflow.ViewBuddy},
}

// navKeyboard — постоянная клавиатура навигации.
func navKeyboard() *telego.ReplyKeyboardMarkup {
	row := func(from, to int) []telego.KeyboardButton {
		var out []telego.KeyboardButton
		for _, b := range navButtons[from:to] {
			out = append(out, tu.KeyboardButton(b.Text))
		}
		return out
	}
	return tu.Keyboard(row(0, 3), row(3, 6)).WithResizeKeyboard()
}

// navTarget — экран по тексту кнопки навигации.
func navTarget(text string) (workflow.View, bool) {
	text = strings.TrimSpace(text)
	for _, b := range navButtons {
		if b.Text == text {
			return b.View, true
		}
	}
	return "", false
}

// Типы callback-данных: "<kind>:<value>".
const (
	cbFulfill = "fulfill" // fulfill:<request id>
	cbChat    = "chat"    // chat:<listing id>
	cbFilter  = "filter"  // filter:<mode> или filter:all
	cbMode    = "mode"
	cbCond    = "cond"
	cbSubject = "subj" // subj:<index>
	cbExam    = "exam"
	cbUrgency = "urg"
	cbSkip    = "skip"
	cbPost    = "post"  // post:request, post:listing
	cbStar    = "star"  // star:1..5
	cbReact   = "react" // react:<index>
	cbSubmit  = "submit"
	cbChip    = "chip" // chip:<index>
)

const filterAll = "all"

func callbackData(kind, value string) string {
	return kind + ":" + value
}

func parseCallback(data string) (kind, value string) {
	kind, value, _ = strings.Cut(data, ":")
	return kind, value
}

func button(text, kind, value string) telego.InlineKeyboardButton {
	return tu.InlineKeyboardButton(text).WithCallbackData(callbackData(kind, value))
}

func skipKeyboard(label string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(tu.InlineKeyboardRow(button(label, cbSkip, "")))
}

// homeKeyboard — кнопка «Fulfill» под каждым запросом.
func homeKeyboard(requests []catalog.BookRequest) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(requests))
	for i, r := range requests {
		label := "🤝 Fulfill #" + strconv.Itoa(i+1) + " · " + common.Truncate(r.Title, 24)
		rows = append(rows, tu.InlineKeyboardRow(button(label, cbFulfill, r.ID)))
	}
	return tu.InlineKeyboard(rows...)
}

// matchesKeyboard — фильтр по типу сделки и «Chat» для каждого объявления.
func matchesKeyboard(listings []catalog.BookListing, active catalog.ExchangeMode) *telego.InlineKeyboardMarkup {
	mark := func(label string, on bool) string {
		if on {
			return "• " + label + " •"
		}
		return label
	}

	filters := []telego.InlineKeyboardButton{button(mark("All", active == ""), cbFilter, filterAll)}
	for _, m := range catalog.Modes {
		filters = append(filters, button(mark(string(m), active == m), cbFilter, string(m)))
	}

	rows := [][]telego.InlineKeyboardButton{filters[:3], filters[3:]}
	for i, l := range listings {
		label := "💬 Chat #" + strconv.Itoa(i+1) + " · " + common.Truncate(l.Title, 24)
		rows = append(rows, tu.InlineKeyboardRow(button(label, cbChat, l.ID)))
	}
	return tu.InlineKeyboard(rows...)
}

func modeKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			button("💵 Sell", cbMode, string(catalog.ModeBuy)),
			button("🎁 Donate", cbMode, string(catalog.ModeDonate)),
		),
		tu.InlineKeyboardRow(
			button("🔁 Borrow", cbMode, string(catalog.ModeBorrow)),
			button("🔄 Exchange", cbMode, string(catalog.ModeExchange)),
		),
	)
}

func conditionKeyboard() *telego.InlineKeyboardMarkup {
	var row []telego.InlineKeyboardButton
	for _, c := range catalog.Conditions {
		row = append(row, button(string(c), cbCond, string(c)))
	}
	return tu.InlineKeyboard(row[:2], row[2:])
}

func subjectKeyboard(subjects []string) *telego.InlineKeyboardMarkup {
	var row []telego.InlineKeyboardButton
	for i, s := range subjects {
		row = append(row, button(s, cbSubject, strconv.Itoa(i)))
	}
	return tu.InlineKeyboard(row)
}

// examTypes — варианты типа экзамена.
var examTypes = []string{"Midterms", "Finals", "Homework", "Research", "Semester"}

func examKeyboard() *telego.InlineKeyboardMarkup {
	var row []telego.InlineKeyboardButton
	for _, e := range examTypes {
		row = append(row, button(e, cbExam, e))
	}
	return tu.InlineKeyboard(row[:3], row[3:])
}

func urgencyKeyboard(suggested catalog.Urgency) *telego.InlineKeyboardMarkup {
	label := func(u catalog.Urgency) string {
		if u == suggested {
			return "✨ " + string(u)
		}
		return string(u)
	}
	return tu.InlineKeyboard(tu.InlineKeyboardRow(
		button(label(catalog.UrgencyMedium), cbUrgency, string(catalog.UrgencyMedium)),
		button(label(catalog.UrgencyHigh), cbUrgency, string(catalog.UrgencyHigh)),
	))
}

func postKeyboard(label, what string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(tu.InlineKeyboardRow(button(label, cbPost, what)))
}

// feedbackKeyboard — звёзды, быстрые реакции и отправка.
func feedbackKeyboard(form workflow.FeedbackForm) *telego.InlineKeyboardMarkup {
	stars := make([]telego.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		glyph := "☆"
		if i <= form.Stars {
			glyph = "★"
		}
		stars = append(stars, button(glyph, cbStar, strconv.Itoa(i)))
	}

	rows := [][]telego.InlineKeyboardButton{stars}
	var row []telego.InlineKeyboardButton
	for i, r := range workflow.QuickReactions {
		label := r
		if containsString(form.Reactions, r) {
			label = "✅ " + r
		}
		row = append(row, button(label, cbReact, strconv.Itoa(i)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tu.InlineKeyboardRow(button("Submit Feedback", cbSubmit, "")))
	return tu.InlineKeyboard(rows...)
}

func buddyKeyboard() *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	for i, chip := range assist.BuddyChips {
		rows = append(rows, tu.InlineKeyboardRow(button(chip, cbChip, strconv.Itoa(i))))
	}
	return tu.InlineKeyboard(rows...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
