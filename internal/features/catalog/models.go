// Package catalog хранит сущности сессии: запросы книг, объявления,
// профиль пользователя и флаг верификации.
// models.go описывает сами сущности.
package catalog

import (
	"strings"
	"time"
)

// Urgency — срочность запроса.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
)

// Condition — состояние книги в объявлении.
type Condition string

const (
	ConditionNew         Condition = "New"
	ConditionGood        Condition = "Good"
	ConditionUsed        Condition = "Used"
	ConditionHighlighted Condition = "Highlighted"
)

// Conditions — все состояния в порядке отображения.
var Conditions = []Condition{ConditionNew, ConditionGood, ConditionUsed, ConditionHighlighted}

// ExchangeMode — тип сделки по объявлению.
type ExchangeMode string

const (
	ModeBuy      ExchangeMode = "Buy"
	ModeBorrow   ExchangeMode = "Borrow"
	ModeExchange ExchangeMode = "Exchange"
	ModeDonate   ExchangeMode = "Donate"
)

// Modes — все типы сделок в порядке отображения.
var Modes = []ExchangeMode{ModeBuy, ModeBorrow, ModeExchange, ModeDonate}

// ParseMode разбирает тип сделки без учёта регистра.
func ParseMode(s string) (ExchangeMode, bool) {
	for _, m := range Modes {
		if equalFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// ParseCondition разбирает состояние книги без учёта регистра.
func ParseCondition(s string) (Condition, bool) {
	for _, c := range Conditions {
		if equalFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// BookRequest — срочный запрос книги. Неизменяем после создания.
type BookRequest struct {
	ID                string    `yaml:"id"`
	RequesterName     string    `yaml:"requester_name"`
	Title             string    `yaml:"title"`
	Subject           string    `yaml:"subject"`
	ExamType          string    `yaml:"exam_type"`
	Urgency           Urgency   `yaml:"urgency"`
	Distance          string    `yaml:"distance"`
	Note              string    `yaml:"note,omitempty"`
	Image             string    `yaml:"image,omitempty"`
	PreferredDate     string    `yaml:"preferred_date,omitempty"`
	PreferredTime     string    `yaml:"preferred_time,omitempty"`
	PreferredLocation string    `yaml:"preferred_location,omitempty"`
	ContactNumber     string    `yaml:"contact_number,omitempty"`     // Приватно, видит только тот, кто помогает
	AdditionalContact string    `yaml:"additional_contact,omitempty"` // Приватно
	CreatedAt         time.Time `yaml:"-"`
}

// BookListing — объявление о книге. Неизменяемо после создания.
type BookListing struct {
	ID         string       `yaml:"id"`
	OwnerName  string       `yaml:"owner_name"`
	Title      string       `yaml:"title"`
	Author     string       `yaml:"author,omitempty"`
	Condition  Condition    `yaml:"condition,omitempty"`
	Subject    string       `yaml:"subject"`
	Mode       ExchangeMode `yaml:"mode"`
	Price      *int         `yaml:"price,omitempty"` // Только для Buy
	MRP        int          `yaml:"mrp,omitempty"`
	Distance   string       `yaml:"distance"`
	IsVerified bool         `yaml:"is_verified"`
	Image      string       `yaml:"image,omitempty"`
}

// HasPrice — у объявления есть осмысленная цена.
func (l BookListing) HasPrice() bool {
	return l.Mode == ModeBuy && l.Price != nil
}

// UserProfile — профиль, заполняется один раз на онбординге.
type UserProfile struct {
	Name        string
	Institution string
	City        string
	Campus      string // необязательно
}
