package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings shared by the API server and the bot.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Log      LogConfig
	Bot      BotConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

type DatabaseConfig struct {
	// URL is a sqlite file path or a postgres DSN.
	URL string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// RedisConfig points at the revoked-token store. An empty URL keeps
// revocations in memory.
type RedisConfig struct {
	URL string
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

type BotConfig struct {
	TelegramToken  string
	APIURL         string
	// DatabaseURL holds the bot's chat sessions. It is separate from the
	// API server's database.
	DatabaseURL    string
	ReportInterval time.Duration
	// ReportTime is an HH:MM wall clock time. When set it replaces the
	// interval schedule with one report a day.
	ReportTime string
	WeekStart  time.Weekday
}

const defaultTokenTTL = 7 * 24 * time.Hour

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	weekStart, err := ParseWeekday(getEnv("WEEK_START", "sunday"))
	if err != nil {
		return Config{}, fmt.Errorf("WEEK_START: %w", err)
	}

	ttl := defaultTokenTTL
	if raw := getEnv("JWT_TTL", ""); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("JWT_TTL: invalid duration %q", raw)
		}
	}

	cfg := Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "todo-planner"),
			Port: getEnv("APP_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "todo_planner.db"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    ttl,
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE", "logs/app.log"),
			MaxSize:    getInt("LOG_MAX_SIZE", 100),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getInt("LOG_MAX_AGE", 30),
			Compress:   getEnv("LOG_COMPRESS", "true") == "true",
		},
		Bot: BotConfig{
			TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
			APIURL:         getEnv("API_URL", "http://localhost:8080"),
			DatabaseURL:    getEnv("BOT_DATABASE_URL", "todo_bot.db"),
			ReportInterval: parseInterval(getEnv("REPORT_INTERVAL_HOURS", "")),
			ReportTime:     getEnv("REPORT_TIME", ""),
			WeekStart:      weekStart,
		},
	}

	if cfg.Bot.ReportInterval == 0 {
		cfg.Bot.ReportInterval = 5 * time.Hour
	}

	return cfg, nil
}

// ValidateServer checks the settings the API server cannot run without.
func (c Config) ValidateServer() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.App.Env == "production" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}

// ValidateBot checks the settings the Telegram bot cannot run without.
func (c Config) ValidateBot() error {
	if c.Bot.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Bot.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	return nil
}

// ParseWeekday accepts an English weekday name or its first three letters.
func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", raw)
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
