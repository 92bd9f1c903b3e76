package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string
	DatabaseURL   string
	SQLitePath    string
	SecretKey     string
	SessionTTL    time.Duration
	SecureCookies bool
	ReadOnly      bool
	CacheEnabled  bool
	CacheTTL      time.Duration
}

// Parse builds a Config from lookup, which has the signature of os.LookupEnv.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok {
			return value
		}
		return fallback
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "girlmath.db"),
		SecretKey:   getEnv("SECRET_KEY", ""),
	}

	defaultDriver := "sqlite"
	if cfg.DatabaseURL != "" {
		defaultDriver = "postgres"
	}
	cfg.DBDriver = getEnv("DB_DRIVER", defaultDriver)
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
	default:
		return cfg, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "168h")); err != nil {
		return cfg, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be positive")
	}
	if cfg.SecureCookies, err = strconv.ParseBool(getEnv("SECURE_COOKIES", "false")); err != nil {
		return cfg, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}
	if cfg.ReadOnly, err = strconv.ParseBool(getEnv("READ_ONLY", "false")); err != nil {
		return cfg, fmt.Errorf("invalid READ_ONLY: %w", err)
	}
	if cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true")); err != nil {
		return cfg, fmt.Errorf("invalid CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "1m")); err != nil {
		return cfg, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be positive")
	}
	return cfg, nil
}

// ValidateServer checks the settings only the web server needs.
func (c Config) ValidateServer() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if len(c.SecretKey) < 16 {
		return errors.New("SECRET_KEY must be at least 16 characters")
	}
	return nil
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
