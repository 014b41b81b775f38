package workflow

// Fallback-значения для экранов chat и feedback без контекста.
const (
	FallbackCounterpart = "Student"
	FallbackBookTitle   = "Book"
)

// Source — откуда открыт контекст координации.
type Source string

const (
	SourceListing Source = "listing"
	SourceRequest Source = "request"
)

// Coordination — временный контекст обмена между chat и feedback.
// Нулевое значение допустимо: геттеры подставляют fallback.
type Coordination struct {
	Source            Source
	RefID             string
	CounterpartName   string
	BookTitle         string
	Image             string
	ContactNumber     string // Только из запроса, приватно
	AdditionalContact string
}

// Name — имя собеседника или "Student".
func (c Coordination) Name() string {
	if c.CounterpartName == "" {
		return FallbackCounterpart
	}
	return c.CounterpartName
}

// Title — название книги или "Book".
func (c Coordination) Title() string {
	if c.BookTitle == "" {
		return FallbackBookTitle
	}
	return c.BookTitle
}
