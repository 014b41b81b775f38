// Package main — точка входа бота.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/app"
	"needbook.app/telegram-bot/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Настраиваем логирование
	setupLogging()

	log.Info("=== NeedBook запускается ===")

	// Загружаем конфигурацию из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	// Устанавливаем уровень логирования из конфига
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}

	// Контекст отменяется по Ctrl+C / docker stop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем приложение (БД, бот, сервисы, сессии)
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}
	defer application.DB.Close()

	// Запускаем планировщик задач (cron)
	if err := application.Scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Не удалось запустить планировщик")
	}

	log.Info("=== Бот готов к работе ===")

	// Блокируемся до отмены ctx
	if err := application.Bot.Start(ctx); err != nil {
		log.WithError(err).Error("Бот остановился с ошибкой")
	}

	log.Info("Останавливаемся, ждём незавершённые обработчики...")
	application.Bot.Wait()
	application.Bot.Close()
	application.Scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	application.Metrics.Shutdown(shutdownCtx)

	log.Info("=== Бот остановлен ===")
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
