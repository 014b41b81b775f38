// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// --- Database (только настройки пользователя, например тема) ---
	// Дефолт "postgres" — имя сервиса в docker-compose, для локалки DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"needbook"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"needbook"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Rate Limiting (входящие сообщения на пользователя) ---
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"1"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"5"`

	// --- Sessions ---
	// Сессия без активности дольше TTL завершается планировщиком.
	SessionIdleTTL       time.Duration `envconfig:"SESSION_IDLE_TTL" default:"2h"`
	SessionSweepSchedule string        `envconfig:"SESSION_SWEEP_SCHEDULE" default:"@every 10m"`

	// --- Verification ---
	VerifyEmailMarker string `envconfig:"VERIFY_EMAIL_MARKER" default:".edu"`

	// --- Generative AI ---
	// Пустой ключ — AI выключен, работают только fallback-ответы.
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	AIRequestsRPS float64       `envconfig:"AI_REQUESTS_PER_SECOND" default:"2"`
	AIBurst       int           `envconfig:"AI_BURST" default:"4"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"20s"`

	// --- Metrics ---
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// AIEnabled — есть ли ключ для генеративного сервиса.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN пустой")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS и RATE_LIMIT_BURST должны быть > 0")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL должен быть > 0")
	}
	if c.VerifyEmailMarker == "" {
		return fmt.Errorf("VERIFY_EMAIL_MARKER не задан")
	}
	if c.AIEnabled() && (c.AIRequestsRPS <= 0 || c.AIBurst <= 0) {
		return fmt.Errorf("AI_REQUESTS_PER_SECOND и AI_BURST должны быть > 0")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
