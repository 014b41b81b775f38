package rewards

// Event — действие пользователя, за которое начисляются очки.
type Event string

const (
	EventOnboardingCompleted Event = "onboarding_completed"
	EventRequestPosted       Event = "request_posted"
	EventListingPosted       Event = "listing_posted"
	EventDonationPosted      Event = "donation_posted"
	EventExchangeCompleted   Event = "exchange_completed"
	EventFeedbackSubmitted   Event = "feedback_submitted"
)

// Rule — сколько очков и какой счётчик даёт событие.
type Rule struct {
	Points  int
	Counter Counter
	Label   string // Для таблицы «как заработать»
}

// Rules — таблица начислений:
//
//	Завершение онбординга          +10
//	Запрос книги                    +5
//	Объявление (не Donate)         +10
//	Объявление Donate              +30  booksDonated
//	Отзыв после обмена             +15  successfulExchanges, затем +5
var Rules = map[Event]Rule{
	EventOnboardingCompleted: {Points: 10, Label: "Complete your profile"},
	EventRequestPosted:       {Points: 5, Label: "Post a book request"},
	EventListingPosted:       {Points: 10, Label: "List a book"},
	EventDonationPosted:      {Points: 30, Counter: CounterBooksDonated, Label: "Donate a book"},
	EventExchangeCompleted:   {Points: 15, Counter: CounterSuccessfulExchanges, Label: "Complete an exchange"},
	EventFeedbackSubmitted:   {Points: 5, Label: "Leave feedback"},
}

// EventOrder — порядок отображения таблицы начислений.
var EventOrder = []Event{
	EventOnboardingCompleted,
	EventRequestPosted,
	EventListingPosted,
	EventDonationPosted,
	EventExchangeCompleted,
	EventFeedbackSubmitted,
}
