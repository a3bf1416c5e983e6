package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"kindled-backend/internal/infrastructure/database"
)

// sslModes accepted by libpq-style connection strings
var sslModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// dbEnv collects parse failures across keys
type dbEnv struct {
	errs []error
}

func (e *dbEnv) intVal(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (e *dbEnv) durationVal(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

// LoadDatabaseConfig reads the Postgres store settings. It is only called
// when STORE_DRIVER=postgres or by cmd/migrate.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	env := &dbEnv{}

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     env.intVal("DB_PORT", 5432),
		Username: getEnv("DB_USER", "kindled"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "kindled"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxConns:          int32(env.intVal("DB_MAX_CONNECTIONS", 10)),
		MinConns:          int32(env.intVal("DB_MIN_CONNECTIONS", 2)),
		MaxConnLifetime:   env.durationVal("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		MaxConnIdleTime:   env.durationVal("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		HealthCheckPeriod: env.durationVal("DB_HEALTH_CHECK_PERIOD", time.Minute),

		MaxRetries:     env.intVal("DB_MAX_RETRIES", 5),
		RetryDelay:     env.durationVal("DB_RETRY_DELAY", time.Second),
		ConnectTimeout: env.durationVal("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}

	if err := validateDatabaseConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDatabaseConfig(cfg *database.DBConfig) error {
	switch {
	case cfg.Host == "":
		return fmt.Errorf("DB_HOST must be set")
	case cfg.Port < 1 || cfg.Port > 65535:
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", cfg.Port)
	case cfg.DBName == "":
		return fmt.Errorf("DB_NAME must be set")
	case !sslModes[cfg.SSLMode]:
		return fmt.Errorf("DB_SSLMODE %q is not a valid sslmode", cfg.SSLMode)
	case cfg.MaxConns < 1:
		return fmt.Errorf("DB_MAX_CONNECTIONS must be at least 1")
	case cfg.MinConns < 0 || cfg.MinConns > cfg.MaxConns:
		return fmt.Errorf("DB_MIN_CONNECTIONS must be between 0 and DB_MAX_CONNECTIONS (%d)", cfg.MaxConns)
	case cfg.MaxRetries < 1:
		return fmt.Errorf("DB_MAX_RETRIES must be at least 1")
	case cfg.RetryDelay < 0:
		return fmt.Errorf("DB_RETRY_DELAY must not be negative")
	case cfg.ConnectTimeout <= 0:
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive")
	}
	return nil
}
