// Package assist — подсказки генеративного сервиса: предметы по названию книги,
// честная цена, срочность запроса, сводка отзывов и чат-помощник Buddy.
// Любая ошибка сервиса заменяется детерминированным fallback-ответом.
package assist

import (
	"context"

	"needbook.app/telegram-bot/internal/features/catalog"
)

// SubjectSuggestion — предметы и краткое описание книги.
type SubjectSuggestion struct {
	Subjects    []string `json:"subjects"`
	Description string   `json:"description"`
}

// PriceSuggestion — рекомендованная цена и совет продавцу.
type PriceSuggestion struct {
	SuggestedPrice int    `json:"suggestedPrice"`
	Advice         string `json:"advice"`
}

// Role — автор реплики в диалоге с Buddy.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn — одна реплика диалога.
type Turn struct {
	Role Role
	Text string
}

// Fallback-ответы, когда сервис недоступен.
const (
	FallbackDescription  = "No description available."
	FallbackPriceAdvice  = "Pricing this fairly helps your fellow students save money!"
	FallbackBuddyReply   = "Hey there! I'm having a little trouble connecting right now. Can you try asking me again in a moment?"
	FallbackFeedbackNote = "Consistently helpful and reliable student contributor."

	BuddyGreeting = "Hey! I'm Buddy, your coordination assistant. 📚 Ready to help you arrange a safe and quick book handover on campus. How can I help?"
)

// FallbackSubjects — предметы по умолчанию.
var FallbackSubjects = []string{"Academic", "General"}

// BuddyChips — быстрые вопросы к Buddy.
var BuddyChips = []string{
	"Safe meeting spots?",
	"Handover tips",
	"Sharing contact info?",
	"Verify student ID",
}

// Generator — «сырой» генеративный сервис. Ошибки возвращаются как есть,
// fallback подставляет Service.
type Generator interface {
	SuggestSubjects(ctx context.Context, title string) (SubjectSuggestion, error)
	SuggestFairPrice(ctx context.Context, mrp int, condition catalog.Condition, title string) (PriceSuggestion, error)
	CheckUrgency(ctx context.Context, note string) (catalog.Urgency, error)
	SummarizeFeedback(ctx context.Context, comments []string) (string, error)
	BuddyReply(ctx context.Context, message string, prior []Turn) (string, error)
}
