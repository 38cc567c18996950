package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App     AppConfig
	Bot     BotConfig
	Sheets  SheetsConfig
	Storage StorageConfig
	Redis   RedisConfig
	Logger  LoggerConfig
}

// AppConfig controls the operational HTTP surface.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// BotConfig holds chat platform parameters.
type BotConfig struct {
	Token                 string
	ReviewChatID          int64
	ModeratorRoleTitle    string
	PrivilegedRoles       []string
	CollectTimeoutSeconds int
	SelectCapacity        int
	PanelPageSize         int
	Timezone              string
}

// SheetsConfig holds Google Sheets parameters.
type SheetsConfig struct {
	CredentialsFile  string
	SpreadsheetID    string
	TicketsWorksheet string
	RosterWorksheet  string
}

// StorageConfig holds local file store locations.
type StorageConfig struct {
	TicketsDir     string
	AttachmentsDir string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	reviewChat, err := strconv.ParseInt(getEnv("BOT_REVIEW_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_REVIEW_CHAT_ID: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "crewdesk-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Bot: BotConfig{
			Token:                 os.Getenv("BOT_TOKEN"),
			ReviewChatID:          reviewChat,
			ModeratorRoleTitle:    getEnv("BOT_MODERATOR_ROLE_TITLE", ""),
			PrivilegedRoles:       splitList(getEnv("BOT_PRIVILEGED_ROLES", "")),
			CollectTimeoutSeconds: getEnvAsInt("BOT_COLLECT_TIMEOUT_SECONDS", 300),
			SelectCapacity:        getEnvAsInt("BOT_SELECT_CAPACITY", 25),
			PanelPageSize:         getEnvAsInt("BOT_PANEL_PAGE_SIZE", 10),
			Timezone:              getEnv("BOT_TIMEZONE", "Europe/Kyiv"),
		},
		Sheets: SheetsConfig{
			CredentialsFile:  getEnv("SHEETS_CREDENTIALS_FILE", "credentials.json"),
			SpreadsheetID:    os.Getenv("SHEETS_SPREADSHEET_ID"),
			TicketsWorksheet: getEnv("SHEETS_TICKETS_WORKSHEET", "Tickets"),
			RosterWorksheet:  getEnv("SHEETS_ROSTER_WORKSHEET", "Roster"),
		},
		Storage: StorageConfig{
			TicketsDir:     getEnv("STORAGE_TICKETS_DIR", "tickets"),
			AttachmentsDir: getEnv("STORAGE_ATTACHMENTS_DIR", "attachments"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// CollectTimeout returns the inactivity timeout for message collection.
func (b BotConfig) CollectTimeout() time.Duration {
	if b.CollectTimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(b.CollectTimeoutSeconds) * time.Second
}

// Location resolves the configured civil timezone for ledger timestamps.
func (b BotConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
