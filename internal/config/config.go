package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	AllowManualConnect   bool
	Port                 string
	CorsOrigins          []string
	MigrationsDir        string
	LogDir               string
	LogRetentionDays     int
	AnalyticsDefaultDays int
	RequestTimeout       int
}

// MissingError reports a required setting that is absent from the environment.
type MissingError struct {
	Key string
}

func (e MissingError) Error() string {
	return "missing env var: " + e.Key
}

// Load reads the environment. The database URL is only optional when manual
// connection is allowed, in which case the server starts disconnected.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:          envOr("DATABASE_URL", ""),
		AllowManualConnect:   envOrBool("ALLOW_MANUAL_CONNECT", false),
		Port:                 envOr("PORT", "8080"),
		CorsOrigins:          parseCSV(envOr("CORS_ORIGINS", "")),
		MigrationsDir:        envOr("MIGRATIONS_DIR", "migrations"),
		LogDir:               envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:     clamp(envOrInt("LOG_RETENTION_DAYS", 7), 1, 7),
		AnalyticsDefaultDays: envOrInt("ANALYTICS_DEFAULT_DAYS", 30),
		RequestTimeout:       envOrInt("REQUEST_TIMEOUT_SECONDS", 15),
	}
	if cfg.DatabaseURL == "" && !cfg.AllowManualConnect {
		return cfg, MissingError{Key: "DATABASE_URL"}
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
