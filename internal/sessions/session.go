// Package sessions хранит сессии NeedBook: одна приватная переписка — одна сессия
// со своим каталогом, журналом очков, автоматом экранов и фоновыми AI-задачами.
package sessions

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/features/assist"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/prefs"
	"needbook.app/telegram-bot/internal/features/rewards"
	"needbook.app/telegram-bot/internal/features/workflow"
	"needbook.app/telegram-bot/internal/validation"
)

// ChatLine — строка локальной переписки (транспорта нет).
type ChatLine struct {
	FromMe bool
	Text   string
	At     time.Time
}

// Session — состояние одной переписки.
// Всё, кроме Tasks, меняется только внутри Do.
type Session struct {
	mu sync.Mutex

	ID        string
	ChatID    int64
	UserID    int64
	StartedAt time.Time

	Flow   *workflow.Controller
	Store  *catalog.Store
	Ledger *rewards.Ledger
	Tasks  *assist.Tasks

	Buddy   []assist.Turn // История Buddy, первой идёт приветствие
	Chat    []ChatLine    // Переписка по текущему обмену
	Draft   any           // Форма, которую пользователь сейчас заполняет
	Summary string        // AI-сводка отзывов
	Theme   prefs.Theme   // Загружается из prefs при создании сессии

	lastSeen atomic.Int64
}

// viewTasks — какие фоновые задачи принадлежат экрану.
var viewTasks = map[workflow.View][]assist.Key{
	workflow.ViewRequest: {assist.KeySubjects, assist.KeyUrgency},
	workflow.ViewList:    {assist.KeyPrice},
	workflow.ViewRewards: {assist.KeySummary},
	workflow.ViewBuddy:   {assist.KeyBuddy},
}

func newSession(chatID, userID int64, seed catalog.Seed, v *validation.Validator, emailMarker string, clock func() time.Time) *Session {
	now := clock()
	s := &Session{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		StartedAt: now,
		Store:     catalog.NewStore(seed.At(now)),
		Ledger:    rewards.NewLedger(),
		Tasks:     assist.NewTasks(),
		Buddy:     []assist.Turn{{Role: assist.RoleModel, Text: assist.BuddyGreeting}},
		Theme:     prefs.DefaultTheme,
	}
	s.Flow = workflow.NewController(s.Store, s.Ledger, v, workflow.Options{
		EmailMarker: emailMarker,
		Now:         clock,
		OnLeave:     s.leave,
		Logger:      s.Logger(),
	})
	s.Touch(now)
	return s
}

// Do выполняет fn под мьютексом сессии.
func (s *Session) Do(fn func(s *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Touch отмечает активность.
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen — время последней активности.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Logger возвращает логгер с полями сессии.
func (s *Session) Logger() *log.Entry {
	return log.WithFields(log.Fields{
		"chat_id":    s.ChatID,
		"user_id":    s.UserID,
		"session_id": s.ID,
	})
}

// OpenChat заполняет переписку стартовыми репликами про книгу.
func (s *Session) OpenChat(bookTitle string, now time.Time) {
	s.Chat = []ChatLine{
		{FromMe: false, Text: "Hi! I saw your request for " + bookTitle + ". I have a copy you can borrow.", At: now},
		{FromMe: true, Text: "That would be amazing! When can we meet?", At: now},
	}
}

// leave отменяет задачи экрана, с которого ушёл пользователь.
func (s *Session) leave(from, to workflow.View) {
	if keys, ok := viewTasks[from]; ok {
		s.Tasks.Cancel(keys...)
	}
	// Черновик формы живёт только на своём экране
	if from == workflow.ViewRequest || from == workflow.ViewList || from == workflow.ViewFeedback ||
		from == workflow.ViewOnboarding || from == workflow.ViewVerify {
		s.Draft = nil
	}
}
