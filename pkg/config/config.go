package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL   = "http://localhost:8000/api"
	DefaultPageSize = 20
	DefaultDebounce = 300 * time.Millisecond
)

type Config struct {
	APIURL     string
	StateURL   string
	AppEnv     string
	LogLevel   slog.Level
	PageSize   int
	Debounce   time.Duration
	Timeout    time.Duration
	Categories bool
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found

	return &Config{
		APIURL:     strings.TrimSuffix(getEnv("LIMESTAR_API_URL", DefaultAPIURL), "/"),
		StateURL:   getEnv("LIMESTAR_STATE_URL", DefaultStateURL()),
		AppEnv:     getEnv("APP_ENV", "local"),
		LogLevel:   getEnvLevel("LIMESTAR_LOG_LEVEL", slog.LevelInfo),
		PageSize:   getEnvInt("LIMESTAR_PAGE_SIZE", DefaultPageSize),
		Debounce:   getEnvDuration("LIMESTAR_DEBOUNCE", DefaultDebounce),
		Timeout:    getEnvDuration("LIMESTAR_TIMEOUT", 0),
		Categories: getEnvBool("LIMESTAR_CATEGORIES", true),
	}
}

// DefaultStateURL points at a sqlite file under the user's home directory,
// falling back to the working directory.
func DefaultStateURL() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "file:limestar-state.db"
	}
	return "file:" + filepath.Join(home, ".limestar", "state.db")
}

// StatePath returns the filesystem path of a local sqlite state URL, or ""
// for remote stores.
func (c *Config) StatePath() string {
	u := c.StateURL
	if !strings.HasPrefix(u, "file:") {
		return ""
	}
	u = strings.TrimPrefix(u, "file:")
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	if u == "" || u == ":memory:" {
		return ""
	}
	return u
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		slog.Warn("ignoring invalid config value", "key", key, "value", raw)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d < 0 {
		slog.Warn("ignoring invalid config value", "key", key, "value", raw)
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("ignoring invalid config value", "key", key, "value", raw)
		return fallback
	}
	return b
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		slog.Warn("ignoring invalid config value", "key", key, "value", raw)
		return fallback
	}
	return l
}
