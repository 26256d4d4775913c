package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // reports use Asia/Jakarta on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	BackendURL     string
	SessionDir     string
	PollInterval   time.Duration
	HTTPTimeout    time.Duration
	LogFormat      string
	LogLevel       string
	AllowedOrigins []string
	Timezone       string

	// Mock backend
	MockPort          string
	JWTSecret         string
	MockTokenTTL      time.Duration
	MockSimulateEvery time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("BACKEND_URL", "http://localhost:8081/api")
	v.SetDefault("SESSION_DIR", "")
	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("TIMEZONE", "Asia/Jakarta")
	v.SetDefault("MOCK_PORT", "8081")
	v.SetDefault("JWT_SECRET", "dev-secret-change-in-production")
	v.SetDefault("MOCK_TOKEN_TTL", "8h")
	v.SetDefault("MOCK_SIMULATE_EVERY", "0s")
}

// Load reads .env (if present) and the environment. Environment variables
// win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		BackendURL:        strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		SessionDir:        v.GetString("SESSION_DIR"),
		PollInterval:      v.GetDuration("POLL_INTERVAL"),
		HTTPTimeout:       v.GetDuration("HTTP_TIMEOUT"),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		Timezone:          v.GetString("TIMEZONE"),
		MockPort:          v.GetString("MOCK_PORT"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		MockTokenTTL:      v.GetDuration("MOCK_TOKEN_TTL"),
		MockSimulateEvery: v.GetDuration("MOCK_SIMULATE_EVERY"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return errors.New("config: BACKEND_URL is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: TIMEZONE: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Location returns the configured report timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetupLogger builds the process logger from LOG_FORMAT and LOG_LEVEL and
// installs it as the slog default. An unknown level falls back to info.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
