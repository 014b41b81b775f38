package assist

import (
	"fmt"
	"strings"

	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/rewards"
)

const jsonSystemPrompt = "You are a helpful assistant for a student book exchange. Reply with a single JSON object and nothing else."

func subjectsPrompt(title string) string {
	return fmt.Sprintf(`Provide 3 standard academic subjects and a brief description for a textbook titled %q.
Return a JSON object with "subjects" (array of strings) and "description" (string).`, title)
}

func pricePrompt(mrp int, condition catalog.Condition, title string) string {
	return fmt.Sprintf(`As a supportive senior student, suggest a fair student-friendly selling price for a used book.
Book: %s
Original Price (MRP): %d
Condition: %s
Return a JSON with "suggestedPrice" (number) and "advice" (string, max 80 chars, friendly senior student tone).`,
		title, mrp, condition)
}

func urgencyPrompt(note string) string {
	return fmt.Sprintf(`Analyze the following student request note and determine if it sounds "High" or "Medium" urgency. Return only the level. Note: %q`, note)
}

func summaryPrompt(comments []string) string {
	return "Summarize these student feedbacks into one supportive sentence for their profile: " + strings.Join(comments, " | ")
}

// buddyInstruction собирает системную инструкцию Buddy.
// Таблица начислений и рангов берётся из rewards, чтобы Buddy не обещал лишнего.
func buddyInstruction() string {
	var sb strings.Builder
	sb.WriteString(`You are Buddy, an AI coordination assistant inside a student-only academic book exchange app called NeedBook.

Your Role:
1. Help students safely and smoothly coordinate book handovers.
2. Manage the Rewards & Engagement System. Encourage students to help others to earn points and tags.
3. Act as a supportive campus moderator for the Feedback system.

Rewards System Knowledge:
`)
	for _, e := range rewards.EventOrder {
		rule := rewards.Rules[e]
		fmt.Fprintf(&sb, "- %s: %s\n", rule.Label, common.FormatAward(rule.Points))
	}

	sb.WriteString("\nStudent Tags:\n")
	for i, t := range rewards.Tiers {
		if i+1 < len(rewards.Tiers) {
			fmt.Fprintf(&sb, "- %s (%d–%d pts)\n", t.Tag, t.MinPoints, rewards.Tiers[i+1].MinPoints-1)
		} else {
			fmt.Fprintf(&sb, "- %s (%d+ pts)\n", t.Tag, t.MinPoints)
		}
	}

	sb.WriteString(`
Personality & Tone:
- Friendly, polite, and student-focused senior campus guide.
- Celebratory when users earn points or receive high ratings.
- Supportive and non-intrusive.

Safety & Privacy Rules:
- NEVER request or display personal home addresses.
- ALWAYS recommend public spots.
- Remind users to verify student ID/identity before the physical exchange.
`)
	return sb.String()
}
