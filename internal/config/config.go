package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	AppName         string
	Port            string
	LogLevel        slog.Level
	UseCORS         bool
	UseAuth         bool
	StripTitle      bool
	SiteProfilePath string
	DetailTimeout   time.Duration
	HTTPTimeout     time.Duration
	MaxConcurrency  int
	ProbeEnabled    bool
	ProbeMinutes    int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		AppName:         getEnv("APP_NAME", "bigfinish-metadata"),
		Port:            getEnv("PORT", getEnv("APP_PORT", "3001")),
		UseCORS:         getEnvAsBool("USE_CORS", false),
		UseAuth:         getEnvAsBool("USE_AUTH", false),
		StripTitle:      getEnvAsBool("STRIP_TITLE", false),
		SiteProfilePath: strings.TrimSpace(os.Getenv("SITE_PROFILE_PATH")),
		DetailTimeout:   time.Duration(getEnvAsInt("DETAIL_TIMEOUT_SECONDS", 15)) * time.Second,
		HTTPTimeout:     time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		MaxConcurrency:  getEnvAsInt("MAX_CONCURRENCY", 8),
		ProbeEnabled:    getEnvAsBool("HEALTH_PROBE_ENABLED", false),
		ProbeMinutes:    getEnvAsInt("HEALTH_PROBE_MINUTES", 10),
	}

	if cfg.DetailTimeout <= 0 {
		cfg.DetailTimeout = 15 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 20 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if cfg.ProbeMinutes <= 0 {
		cfg.ProbeMinutes = 10
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
