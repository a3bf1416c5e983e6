package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kindled-backend/internal/domains/entry/slug"
	"kindled-backend/internal/infrastructure/moderation"
)

// Store drivers
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App        AppConfig
	Store      StoreConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Moderation ModerationConfig
	RateLimit  RateLimitConfig
	Slug       SlugConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string

	// Honour X-Forwarded-For / X-Real-IP; only behind a trusted proxy
	TrustProxyHeaders bool
	CORSOrigins       []string
}

type StoreConfig struct {
	Driver string // mongo, postgres, memory
}

type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	// Disabled falls back to per-process rate limiting
	Enabled bool
}

type ModerationConfig struct {
	Provider        string // stream, blocklist
	Timeout         time.Duration
	StreamAPIKey    string
	StreamAPISecret string
	StreamBaseURL   string
	StreamConfigKey string
	Blocklist       []string
}

// RateLimitConfig requests per Window, per client IP, per route class
type RateLimitConfig struct {
	Read   int
	Write  int
	Create int
	Delete int
	Window time.Duration
}

type SlugConfig struct {
	Policy    string // word_pair, title
	MaxLength int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:              getEnv("APP_NAME", "kindled"),
			Environment:       getEnv("APP_ENV", "development"),
			Port:              getEnv("APP_PORT", "8080"),
			Version:           getEnv("APP_VERSION", "1.0.0"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
			CORSOrigins:       getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "kindled"),
			Collection:     getEnv("MONGO_COLLECTION", "notes"),
			ConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvBool("REDIS_ENABLED", true),
		},
		Moderation: ModerationConfig{
			Provider:        strings.ToLower(getEnv("MODERATION_PROVIDER", moderation.ProviderStream)),
			Timeout:         getEnvDuration("MODERATION_TIMEOUT", 5*time.Second),
			StreamAPIKey:    getEnv("STREAM_API_KEY", ""),
			StreamAPISecret: getEnv("STREAM_API_SECRET", ""),
			StreamBaseURL:   getEnv("STREAM_BASE_URL", moderation.DefaultStreamBaseURL),
			StreamConfigKey: getEnv("STREAM_CONFIG_KEY", moderation.DefaultStreamConfigKey),
			Blocklist:       getEnvList("MODERATION_BLOCKLIST", nil),
		},
		RateLimit: RateLimitConfig{
			Read:   getEnvInt("RATE_LIMIT_READ", 60),
			Write:  getEnvInt("RATE_LIMIT_WRITE", 20),
			Create: getEnvInt("RATE_LIMIT_CREATE", 10),
			Delete: getEnvInt("RATE_LIMIT_DELETE", 10),
			Window: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Slug: SlugConfig{
			Policy:    strings.ToLower(getEnv("SLUG_POLICY", string(slug.PolicyWordPair))),
			MaxLength: getEnvInt("SLUG_MAX_LENGTH", 20),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be mongo, postgres or memory, got %q", c.Store.Driver)
	}

	switch c.Moderation.Provider {
	case moderation.ProviderStream, moderation.ProviderBlocklist:
	default:
		return fmt.Errorf("MODERATION_PROVIDER must be stream or blocklist, got %q", c.Moderation.Provider)
	}
	if c.Moderation.Timeout <= 0 {
		return fmt.Errorf("MODERATION_TIMEOUT must be positive")
	}

	if !slug.Policy(c.Slug.Policy).IsValid() {
		return fmt.Errorf("SLUG_POLICY must be word_pair or title, got %q", c.Slug.Policy)
	}
	if c.Slug.MaxLength < slug.MinMaxLength {
		return fmt.Errorf("SLUG_MAX_LENGTH must be at least %d", slug.MinMaxLength)
	}

	if c.RateLimit.Read < 0 || c.RateLimit.Write < 0 || c.RateLimit.Create < 0 || c.RateLimit.Delete < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}

	// Production phải có moderation thật
	if c.App.Environment == "production" {
		if c.Moderation.Provider != moderation.ProviderStream {
			return fmt.Errorf("MODERATION_PROVIDER must be stream in production")
		}
		if c.Moderation.StreamAPIKey == "" || c.Moderation.StreamAPISecret == "" {
			return fmt.Errorf("STREAM_API_KEY and STREAM_API_SECRET must be set in production")
		}
		if c.Store.Driver == StoreMemory {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	}

	return nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma-separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
