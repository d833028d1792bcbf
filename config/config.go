package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// AppConfig holds all configuration for the API, feed and seed processes.
// The values are loaded from environment variables.
type AppConfig struct {
	Env      string
	Port     string
	FeedPort string

	StoreDriver  string
	MongoURI     string
	DatabaseName string
	DatabaseURL  string

	JWTSecret string
	TokenTTL  time.Duration

	TickInterval   time.Duration
	AllowedOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

func (c AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// Load reads .env when present and then the process environment.
func Load() (*AppConfig, error) {
	loaded := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		loaded = false
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.EnvFileLoaded = loaded
	return cfg, nil
}

// FromEnv builds the config from a lookup function so tests don't need to
// touch the real environment.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &AppConfig{
		Env:          get("ENV", "dev"),
		Port:         get("PORT", "3000"),
		FeedPort:     get("FEED_PORT", "8080"),
		StoreDriver:  strings.ToLower(get("STORE_DRIVER", StoreMemory)),
		MongoURI:     get("MONGODB_URI", ""),
		DatabaseName: get("DATABASE_NAME", "portfolio-tracker"),
		DatabaseURL:  get("DATABASE_URL", ""),
		JWTSecret:    get("JWT_SECRET", ""),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "3h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.TickInterval, err = time.ParseDuration(get("TICK_INTERVAL", "10s")); err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: must be positive")
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI environment variable is not set")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
		}
		cfg.JWTSecret = "dev-only-jwt-secret"
	}

	return cfg, nil
}
