// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, миграции, сервисы, менеджер сессий,
// и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/bot"
	"needbook.app/telegram-bot/internal/common"
	"needbook.app/telegram-bot/internal/config"
	"needbook.app/telegram-bot/internal/db/postgres"
	"needbook.app/telegram-bot/internal/features/assist"
	"needbook.app/telegram-bot/internal/features/catalog"
	"needbook.app/telegram-bot/internal/features/prefs"
	"needbook.app/telegram-bot/internal/jobs"
	"needbook.app/telegram-bot/internal/metrics"
	"needbook.app/telegram-bot/internal/sessions"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *telego.Bot
	Metrics   *metrics.Server
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных (только настройки пользователя) ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Сервисы ===
	prefsService := prefs.NewService(prefs.NewRepository(pool))

	// Интерфейс, а не *GeminiClient: typed nil сломал бы Enabled()
	var gen assist.Generator
	if cfg.AIEnabled() {
		gen = assist.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel)
		log.WithField("model", cfg.GeminiModel).Info("Генеративный сервис подключён")
	} else {
		log.Warn("GEMINI_API_KEY не задан, AI-подсказки работают в режиме fallback")
	}
	assistService := assist.NewService(gen, cfg.AIRequestsRPS, cfg.AIBurst, cfg.AITimeout)

	// === 3. Сессии ===
	seed, err := catalog.DefaultSeed()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка загрузки стартовых данных: %w", err)
	}
	sessionManager := sessions.NewManager(sessions.Config{
		Seed:        seed,
		EmailMarker: cfg.VerifyEmailMarker,
	})

	// === 4. Telegram Bot API ===
	botAPI, err := telego.NewBot(cfg.TelegramBotToken, telego.WithDiscardLogger())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	if me, err := botAPI.GetMe(ctx); err == nil {
		log.Infof("Авторизован как @%s", me.Username)
	} else {
		log.WithError(err).Warn("Не удалось получить данные бота")
	}

	// === 5. Собираем бота ===
	b := bot.New(botAPI, cfg, bot.NewMessenger(botAPI), sessionManager, assistService, prefsService)

	// === 6. Планировщик задач ===
	scheduler := jobs.NewScheduler(
		sessionManager,
		cfg.SessionSweepSchedule,
		cfg.SessionIdleTTL,
		common.LoadLocation(cfg.AppTimezone),
	)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
		Metrics:   metrics.StartServer(cfg.MetricsAddr),
	}, nil
}
