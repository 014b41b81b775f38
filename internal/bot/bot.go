// Package bot — Telegram-транспорт NeedBook: polling, маршрутизация апдейтов,
// диалоги форм и отрисовка экранов. Всё состояние живёт в сессиях,
// изменения одной переписки идут строго под её мьютексом.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/bot/filters"
	"needbook.app/telegram-bot/internal/bot/middleware"
	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/config"
	"needbook.app/telegram-bot/internal/features/assist"
	"needbook.app/telegram-bot/internal/features/prefs"
	"needbook.app/telegram-bot/internal/sessions"
)

// ThemeStore — хранилище темы (prefs.Service).
type ThemeStore interface {
	Theme(ctx context.Context, userID int64) (prefs.Theme, error)
	ToggleTheme(ctx context.Context, userID int64) (prefs.Theme, error)
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	msg Messenger
	cfg *config.Config

	sessions *sessions.Manager
	assist   *assist.Service
	themes   ThemeStore

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	loc *time.Location
	now func() time.Time

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
	// фоновые AI-задачи и обработчики апдейтов
	wg sync.WaitGroup
}

// New создаёт бота. api может быть nil, если бот не запускает polling (тесты).
func New(
	api *telego.Bot,
	cfg *config.Config,
	msg Messenger,
	sessionManager *sessions.Manager,
	assistService *assist.Service,
	themes ThemeStore,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	b := &Bot{
		api:         api,
		msg:         msg,
		cfg:         cfg,
		sessions:    sessionManager,
		assist:      assistService,
		themes:      themes,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		parser:      NewCommandParser(),
		loc:         common.LoadLocation(cfg.AppTimezone),
		now:         time.Now,
		inflight:    make(chan struct{}, maxInFlight),
	}
	b.chatFilter = filters.NewChatFilter(b.notify)
	return b
}

// Start запускает long polling и обрабатывает апдейты до отмены ctx.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("telegram api is not configured")
	}

	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска polling: %w", err)
	}

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			b.wg.Add(1)
			go func(upd telego.Update) {
				defer func() {
					<-b.inflight
					b.wg.Done()
				}()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// Wait ждёт завершения обработчиков и фоновых AI-задач.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// Close освобождает ресурсы бота.
func (b *Bot) Close() {
	b.rateLimiter.Close()
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *telego.Message) {
	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	userID := message.From.ID
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)

	// Команды, которые не должны держать мьютекс сессии
	if isCommand {
		switch cmd {
		case "reset":
			b.handleReset(ctx, chatID)
			return
		case "theme":
			b.handleTheme(ctx, chatID, userID)
			return
		}
	}

	s := b.session(ctx, chatID, userID)
	s.Do(func(s *sessions.Session) {
		if isCommand {
			b.routeCommand(ctx, s, cmd, args)
			return
		}
		if target, ok := navTarget(message.Text); ok {
			b.navigate(ctx, s, target)
			return
		}
		b.handleInput(ctx, s, event{text: message.Text, photo: largestPhoto(message.Photo)})
	})
}

func (b *Bot) handleCallback(ctx context.Context, query *telego.CallbackQuery) {
	middleware.LogCallback(query)

	userID := query.From.ID
	if !b.rateLimiter.Allow(userID) {
		b.answer(ctx, query.ID, "Slow down a little 🙂")
		return
	}

	kind, value := parseCallback(query.Data)

	// Бот работает только в личке: chat id совпадает с user id
	s := b.session(ctx, userID, userID)
	s.Do(func(s *sessions.Session) {
		b.routeCallback(ctx, s, kind, value)
	})
	b.answer(ctx, query.ID, "")
}

// session возвращает сессию чата; для новой подтягивает тему из prefs.
func (b *Bot) session(ctx context.Context, chatID, userID int64) *sessions.Session {
	s, created := b.sessions.Get(chatID, userID)
	if !created || b.themes == nil {
		return s
	}

	theme, err := b.themes.Theme(ctx, userID)
	if err != nil {
		s.Logger().WithError(err).Warn("Не удалось загрузить тему, используем тему по умолчанию")
	}
	s.Do(func(s *sessions.Session) {
		s.Theme = theme
	})
	return s
}

func (b *Bot) handleReset(ctx context.Context, chatID int64) {
	if err := b.sessions.Discard(chatID); err != nil && !errors.Is(err, common.ErrSessionNotFound) {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка сброса сессии")
	}
	b.sendTo(ctx, chatID, "Session reset. Send /start to begin again.", tu.ReplyKeyboardRemove())
}

func (b *Bot) handleTheme(ctx context.Context, chatID, userID int64) {
	s := b.session(ctx, chatID, userID)
	if b.themes == nil {
		b.sendTo(ctx, chatID, "Themes are not available right now.", nil)
		return
	}

	theme, err := b.themes.ToggleTheme(ctx, userID)
	if err != nil {
		s.Logger().WithError(err).Error("Ошибка переключения темы")
		b.sendTo(ctx, chatID, errorText(err), nil)
		return
	}

	s.Do(func(s *sessions.Session) {
		s.Theme = theme
		g := glyphsFor(theme)
		b.send(ctx, s, fmt.Sprintf("%s Theme: <b>%s</b>", g.Header, theme), nil)
	})
}

// notify — ответ вне сессии (фильтр чатов).
func (b *Bot) notify(ctx context.Context, chatID int64, text string) {
	b.sendTo(ctx, chatID, text, nil)
}

func (b *Bot) send(ctx context.Context, s *sessions.Session, text string, markup telego.ReplyMarkup) {
	if err := b.msg.SendText(ctx, s.ChatID, text, markup); err != nil {
		s.Logger().WithError(err).Error("Ошибка отправки сообщения")
	}
}

func (b *Bot) sendTo(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) {
	if err := b.msg.SendText(ctx, chatID, text, markup); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func (b *Bot) sendPhoto(ctx context.Context, s *sessions.Session, photo, caption string, markup telego.ReplyMarkup) {
	if err := b.msg.SendPhoto(ctx, s.ChatID, photo, caption, markup); err != nil {
		s.Logger().WithError(err).Warn("Ошибка отправки фото, отправляем текстом")
		b.send(ctx, s, caption, markup)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if err := b.msg.AnswerCallback(ctx, callbackID, text); err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}

// fail сообщает пользователю понятную ошибку.
func (b *Bot) fail(ctx context.Context, s *sessions.Session, err error) {
	s.Logger().WithError(err).WithField("view", s.Flow.View()).Debug("Действие отклонено")
	b.send(ctx, s, errorText(err), nil)
}

func largestPhoto(photos []telego.PhotoSize) string {
	if len(photos) == 0 {
		return ""
	}
	return photos[len(photos)-1].FileID
}

// runAssist запускает AI-запрос вне мьютекса сессии. Результат применяется
// под мьютексом и только если задача не вытеснена и не отменена.
func runAssist[T any](ctx context.Context, b *Bot, s *sessions.Session, key assist.Key, call func(ctx context.Context) T, apply func(s *sessions.Session, v T)) {
	taskCtx, ticket := s.Tasks.Begin(ctx, key)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer middleware.RecoverFromPanic()

		v := call(taskCtx)
		s.Do(func(s *sessions.Session) {
			// Отмену проверяем до Finish: Finish сам отменяет ctx задачи
			stale := taskCtx.Err() != nil
			if !s.Tasks.Finish(ticket) || stale {
				s.Logger().WithField("op", key).Debug("Результат AI устарел, отброшен")
				return
			}
			apply(s, v)
		})
	}()
}
