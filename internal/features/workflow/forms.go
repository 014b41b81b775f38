package workflow

import (
	"time"

	"needbook.app/telegram-bot/internal/features/catalog"
)

// Значения по умолчанию для форм.
const (
	DefaultExamType     = "Finals"
	DefaultRequesterTag = "Me (You)"
	RequestDistance     = "0.1 mi"
	ListingDistance     = "0 mi"
	CommentMaxLength    = 150

	// DefaultListingImage — заглушка, если к объявлению не приложено фото.
	DefaultListingImage = "https://images.unsplash.com/photo-1544640808-32ca72ac7f67?auto=format&fit=crop&q=80&w=400"
)

// QuickReactions — быстрые реакции в отзыве.
var QuickReactions = []string{"Helpful", "On time", "Friendly", "Fair price", "Great condition"}

// ProfileForm — данные онбординга.
type ProfileForm struct {
	Name        string `label:"name" validate:"notblank,max=64"`
	Institution string `label:"college" validate:"notblank,max=128"`
	City        string `label:"city" validate:"notblank,max=64"`
	Campus      string `label:"campus" validate:"max=64"`
}

// VerifyForm — email для проверки.
type VerifyForm struct {
	Email string `label:"email" validate:"required,email"`
}

// RequestForm — данные запроса книги.
type RequestForm struct {
	Title             string          `label:"title" validate:"notblank,max=120"`
	Subject           string          `label:"subject" validate:"notblank,max=64"`
	ExamType          string          `label:"exam type" validate:"max=32"`
	Urgency           catalog.Urgency `label:"urgency" validate:"omitempty,oneof=High Medium"`
	Note              string          `label:"note" validate:"max=300"`
	Image             string          `label:"photo"`
	PreferredDate     string          `label:"date" validate:"max=32"`
	PreferredTime     string          `label:"time" validate:"max=32"`
	PreferredLocation string          `label:"location" validate:"max=120"`
	ContactNumber     string          `label:"contact" validate:"max=32"`
	AdditionalContact string          `label:"additional contact" validate:"max=32"`
}

// ListingForm — данные объявления.
type ListingForm struct {
	Title     string               `label:"title" validate:"notblank,max=120"`
	Author    string               `label:"author" validate:"max=120"`
	Subject   string               `label:"subject" validate:"max=64"`
	Condition catalog.Condition    `label:"condition" validate:"omitempty,oneof=New Good Used Highlighted"`
	Mode      catalog.ExchangeMode `label:"mode" validate:"required,oneof=Buy Borrow Exchange Donate"`
	MRP       int                  `label:"mrp" validate:"gte=0"`
	Price     *int                 `label:"price" validate:"omitempty,gte=0"` // Только для Buy, берётся из рекомендации
	Image     string               `label:"photo"`
}

// FeedbackForm — отзыв после обмена.
type FeedbackForm struct {
	Stars     int      `label:"stars"`
	Reactions []string `label:"reactions" validate:"dive,oneof='Helpful' 'On time' 'Friendly' 'Fair price' 'Great condition'"`
	Comment   string   `label:"comment" validate:"max=150"`
}

// FeedbackRecord — сохранённый отзыв (для экрана наград).
type FeedbackRecord struct {
	Stars       int
	Reactions   []string
	Comment     string
	Counterpart string
	BookTitle   string
	SubmittedAt time.Time
}
