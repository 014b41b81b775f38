package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/prefs"
	"needbook.app/telegram-bot/internal/features/rewards"
	"needbook.app/telegram-bot/internal/features/workflow"
	"needbook.app/telegram-bot/internal/sessions"
	"needbook.app/telegram-bot/internal/validation"
)

// glyphs — символы оформления. Тема меняет только их.
type glyphs struct {
	Header string
	Bullet string
	Fill   string
	Empty  string
}

func glyphsFor(t prefs.Theme) glyphs {
	if t == prefs.ThemeDark {
		return glyphs{Header: "🌙", Bullet: "▪️", Fill: "▰", Empty: "▱"}
	}
	return glyphs{Header: "☀️", Bullet: "▫️", Fill: "■", Empty: "□"}
}

func esc(s string) string {
	return html.EscapeString(s)
}

func header(v workflow.View, g glyphs) string {
	return fmt.Sprintf("%s <b>%s</b>\n\n", g.Header, esc(v.Title()))
}

func renderHelp() string {
	var sb strings.Builder
	sb.WriteString("<b>NeedBook</b> — swap, borrow and donate books on campus.\n\n")
	sb.WriteString("/home — urgent requests nearby\n")
	sb.WriteString("/request — ask for a book\n")
	sb.WriteString("/list — sell, lend or donate a book\n")
	sb.WriteString("/matches — nearby listings\n")
	sb.WriteString("/rewards — your rank and points\n")
	sb.WriteString("/history — latest point awards\n")
	sb.WriteString("/buddy — coordination assistant\n")
	sb.WriteString("/theme — switch dark/light\n")
	sb.WriteString("/reset — start over\n")
	return sb.String()
}

var onboardingPrompts = []string{
	"What's your full name? (e.g. Alex Thompson)",
	"Which university do you attend? (e.g. Stanford University)",
	"Which city? (e.g. Palo Alto)",
	"Campus, if your university has several (e.g. North). Optional.",
}

func renderOnboardingPrompt(step int, g glyphs) string {
	text := onboardingPrompts[step]
	if step == 0 {
		return header(workflow.ViewOnboarding, g) + "Almost there! 🎓 Let's set up your profile.\n\n" + text
	}
	return text
}

func renderVerify(marker string, g glyphs) string {
	return header(workflow.ViewVerify, g) +
		"Send your institutional email to unlock the exchange.\n" +
		fmt.Sprintf("It must contain <code>%s</code>, e.g. your.name@university%s", esc(marker), esc(marker))
}

func renderHome(requests []catalog.BookRequest, g glyphs) string {
	var sb strings.Builder
	sb.WriteString(header(workflow.ViewHome, g))
	sb.WriteString("<b>Help a classmate today!</b>\n")
	fmt.Fprintf(&sb, "There are %d students near you needing books for upcoming exams.\n", len(requests))

	for i, r := range requests {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s <b>#%d %s</b> · %s Urgency\n", g.Bullet, i+1, esc(r.Title), r.Urgency)
		fmt.Fprintf(&sb, "%s · %s · %s · %s\n", esc(r.Subject), esc(r.ExamType), esc(r.Distance), esc(r.RequesterName))
		if r.Note != "" {
			fmt.Fprintf(&sb, "<i>\"%s\"</i>\n", esc(common.Truncate(r.Note, 120)))
		}
		if r.PreferredLocation != "" || r.PreferredDate != "" {
			when := common.FirstNonEmpty(r.PreferredDate, "Flexible")
			if r.PreferredTime != "" {
				when += " @ " + r.PreferredTime
			}
			fmt.Fprintf(&sb, "📍 %s · 📅 %s\n", esc(common.FirstNonEmpty(r.PreferredLocation, "Campus Meeting")), esc(when))
		}
	}
	return sb.String()
}

func renderMatches(listings []catalog.BookListing, mode catalog.ExchangeMode, g glyphs) string {
	var sb strings.Builder
	sb.WriteString(header(workflow.ViewMatches, g))
	if mode != "" {
		fmt.Fprintf(&sb, "Filter: <b>%s</b>\n", mode)
	}
	if len(listings) == 0 {
		sb.WriteString("No listings match this filter yet.")
		return sb.String()
	}

	for i, l := range listings {
		if i > 0 {
			sb.WriteString("\n")
		}
		verified := ""
		if l.IsVerified {
			verified = " ✅"
		}
		fmt.Fprintf(&sb, "%s <b>#%d %s</b> · %s\n", g.Bullet, i+1, esc(l.Title), l.Mode)
		line := []string{esc(l.OwnerName) + verified, string(l.Condition), esc(l.Distance)}
		if l.Author != "" {
			line = append([]string{esc(l.Author)}, line...)
		}
		sb.WriteString(strings.Join(line, " · "))
		sb.WriteString("\n")
		if l.HasPrice() {
			fmt.Fprintf(&sb, "$%d", *l.Price)
			if l.MRP > 0 {
				fmt.Fprintf(&sb, " <s>$%d</s>", l.MRP)
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("Student Share\n")
		}
	}
	return sb.String()
}

func progressBar(percent int, g glyphs) string {
	const width = 10
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	return strings.Repeat(g.Fill, filled) + strings.Repeat(g.Empty, width-filled)
}

func renderRewards(stats rewards.Stats, avg float64, hasAvg bool, summary string, g glyphs) string {
	var sb strings.Builder
	sb.WriteString(header(workflow.ViewRewards, g))
	fmt.Fprintf(&sb, "🏅 <b>%s</b>\n", stats.Tag)
	fmt.Fprintf(&sb, "%s\n", common.FormatPoints(stats.Points))

	p := rewards.ProgressFor(stats.Points)
	if p.HasNext {
		fmt.Fprintf(&sb, "%s %d%%\n%s left to %s\n", progressBar(p.Percent, g), p.Percent,
			common.FormatPoints(p.PointsLeft), p.Next.Tag)
	} else {
		fmt.Fprintf(&sb, "%s Top rank reached!\n", progressBar(100, g))
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s Exchanges: %d\n", g.Bullet, stats.SuccessfulExchanges)
	fmt.Fprintf(&sb, "%s Books lent: %d\n", g.Bullet, stats.BooksLent)
	fmt.Fprintf(&sb, "%s Books donated: %d\n", g.Bullet, stats.BooksDonated)
	if hasAvg {
		fmt.Fprintf(&sb, "%s Rating: %.1f ★\n", g.Bullet, avg)
	}

	if summary != "" {
		fmt.Fprintf(&sb, "\n<b>What students say</b>\n<i>%s</i>\n", esc(summary))
	}

	sb.WriteString("\n<b>How to earn points</b>\n")
	for _, e := range rewards.EventOrder {
		rule := rewards.Rules[e]
		fmt.Fprintf(&sb, "%s %s: %s\n", g.Bullet, rule.Label, common.FormatAward(rule.Points))
	}
	return sb.String()
}

func renderHistory(entries []rewards.Entry, loc *time.Location) string {
	if len(entries) == 0 {
		return "No points yet. Complete your profile to earn your first 10 pts!"
	}
	var sb strings.Builder
	sb.WriteString("<b>Latest awards</b>\n\n")
	for _, e := range entries {
		label := string(e.Event)
		if rule, ok := rewards.Rules[e.Event]; ok {
			label = rule.Label
		}
		fmt.Fprintf(&sb, "%s · %s · %s → %s\n",
			common.FormatDateTime(e.At, loc), common.FormatAward(e.Amount), esc(label), common.FormatPoints(e.Points))
	}
	return sb.String()
}

// renderAwards — уведомление о начислениях и повышении ранга.
func renderAwards(awards []rewards.AwardResult) string {
	var parts []string
	var last rewards.AwardResult
	promoted := false
	for _, a := range awards {
		if !a.Applied {
			continue
		}
		parts = append(parts, common.FormatAward(a.After.Points-a.Before.Points))
		if a.Promoted() {
			promoted = true
		}
		last = a
	}
	if len(parts) == 0 {
		return ""
	}

	text := fmt.Sprintf("⭐ %s · total %s", strings.Join(parts, ", "), common.FormatPoints(last.After.Points))
	if promoted {
		text += fmt.Sprintf("\n🎉 You are now a <b>%s</b>!", last.After.Tag)
	}
	return text
}

func renderChat(coord workflow.Coordination, lines []sessions.ChatLine, loc *time.Location, g glyphs) string {
	var sb strings.Builder
	sb.WriteString(header(workflow.ViewChat, g))
	fmt.Fprintf(&sb, "<b>%s</b>\nBook: %s\n\n", esc(coord.Name()), esc(coord.Title()))
	for _, l := range lines {
		who := esc(coord.Name())
		if l.FromMe {
			who = "You"
		}
		fmt.Fprintf(&sb, "<b>%s</b> (%s): %s\n", who, l.At.In(loc).Format("15:04"), esc(l.Text))
	}
	sb.WriteString("\nType a message...")
	return sb.String()
}

func renderFeedback(coord workflow.Coordination, form workflow.FeedbackForm, g glyphs) string {
	var sb strings.Builder
	sb.WriteString(header(workflow.ViewFeedback, g))
	sb.WriteString("<b>Transaction Complete!</b>\n")
	fmt.Fprintf(&sb, "How was your exchange with <b>%s</b> for <i>%s</i>?\n\n", esc(coord.Name()), esc(coord.Title()))
	if coord.ContactNumber != "" {
		fmt.Fprintf(&sb, "📞 %s", esc(coord.ContactNumber))
		if coord.AdditionalContact != "" {
			fmt.Fprintf(&sb, " / %s", esc(coord.AdditionalContact))
		}
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Rating: %s\n", starLine(form.Stars))
	if len(form.Reactions) > 0 {
		fmt.Fprintf(&sb, "Reactions: %s\n", esc(strings.Join(form.Reactions, ", ")))
	}
	if form.Comment != "" {
		fmt.Fprintf(&sb, "Comment: <i>%s</i>\n", esc(form.Comment))
	}
	fmt.Fprintf(&sb, "\nOptional comment: just type it (max %d characters).", workflow.CommentMaxLength)
	return sb.String()
}

func starLine(n int) string {
	if n <= 0 {
		return "not rated"
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func renderBuddyIntro(greeting string, g glyphs) string {
	return header(workflow.ViewBuddy, g) + esc(greeting)
}

// errorText — понятное пользователю сообщение по sentinel-ошибке.
func errorText(err error) string {
	var fe *validation.FieldError
	switch {
	case errors.Is(err, common.ErrPhotoRequired):
		return "📷 A photo of the book is required. Please send one."
	case errors.Is(err, common.ErrEmailNotInstitutional):
		return "That doesn't look like an institutional email. Please use your university address."
	case errors.Is(err, common.ErrRatingRequired):
		return "Please pick at least one star before submitting."
	case errors.As(err, &fe):
		return "⚠️ " + fe.Error()
	case errors.Is(err, common.ErrFieldRequired), errors.Is(err, common.ErrFieldInvalid), errors.Is(err, common.ErrFieldTooLong):
		return "⚠️ " + err.Error()
	case errors.Is(err, common.ErrNotVerified):
		return "Please verify your student email first."
	case errors.Is(err, common.ErrAlreadyVerified):
		return "You're already verified ✅"
	case errors.Is(err, common.ErrActionOnlyView):
		return "Open a chat from Matches or fulfill a request from Home."
	case errors.Is(err, common.ErrProfileAlreadySet):
		return "Your profile is already set up."
	case errors.Is(err, common.ErrRequestNotFound), errors.Is(err, common.ErrListingNotFound):
		return "That item is no longer available."
	case errors.Is(err, common.ErrOnboardingIncomplete):
		return "Let's finish your profile first."
	case errors.Is(err, common.ErrInvalidTransition):
		return "You can't go there right now."
	default:
		return "Something went wrong. Please try again."
	}
}
