package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MODERATION_PROVIDER", "")
	t.Setenv("SLUG_POLICY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kindled", cfg.App.Name)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, "kindled", cfg.Mongo.Database)
	assert.Equal(t, "notes", cfg.Mongo.Collection)
	assert.Equal(t, "stream", cfg.Moderation.Provider)
	assert.Equal(t, "word_pair", cfg.Slug.Policy)
	assert.Equal(t, 20, cfg.Slug.MaxLength)
	assert.Equal(t, RateLimitConfig{Read: 60, Write: 20, Create: 10, Delete: 10, Window: time.Minute}, cfg.RateLimit)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("MODERATION_PROVIDER", "blocklist")
	t.Setenv("MODERATION_BLOCKLIST", "spam, scam ,,")
	t.Setenv("MODERATION_TIMEOUT", "750ms")
	t.Setenv("RATE_LIMIT_CREATE", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("SLUG_POLICY", "title")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, []string{"spam", "scam"}, cfg.Moderation.Blocklist)
	assert.Equal(t, 750*time.Millisecond, cfg.Moderation.Timeout)
	assert.Equal(t, 3, cfg.RateLimit.Create)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "title", cfg.Slug.Policy)
	assert.True(t, cfg.App.TrustProxyHeaders)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func validConfig() *Config {
	return &Config{
		App:        AppConfig{Environment: "development"},
		Store:      StoreConfig{Driver: StoreMemory},
		Moderation: ModerationConfig{Provider: "blocklist", Timeout: time.Second},
		RateLimit:  RateLimitConfig{Read: 1, Write: 1, Create: 1, Delete: 1, Window: time.Minute},
		Slug:       SlugConfig{Policy: "word_pair", MaxLength: 20},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Moderation.Provider = "oracle" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Moderation.Timeout = 0 }, wantErr: true},
		{name: "unknown slug policy", mutate: func(c *Config) { c.Slug.Policy = "uuid" }, wantErr: true},
		{name: "slug too short", mutate: func(c *Config) { c.Slug.MaxLength = 4 }, wantErr: true},
		{name: "negative limit", mutate: func(c *Config) { c.RateLimit.Create = -1 }, wantErr: true},
		{name: "zero limit disables", mutate: func(c *Config) { c.RateLimit.Read = 0 }},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, wantErr: true},
		{
			name: "production requires stream",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Store.Driver = StoreMongo
			},
			wantErr: true,
		},
		{
			name: "production requires credentials",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Store.Driver = StoreMongo
				c.Moderation.Provider = "stream"
			},
			wantErr: true,
		},
		{
			name: "production rejects memory store",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Moderation.Provider = "stream"
				c.Moderation.StreamAPIKey = "key"
				c.Moderation.StreamAPISecret = "secret"
			},
			wantErr: true,
		},
		{
			name: "production ok",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Store.Driver = StorePostgres
				c.Moderation.Provider = "stream"
				c.Moderation.StreamAPIKey = "key"
				c.Moderation.StreamAPISecret = "secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_CONNECTIONS", "7")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	dbConfig, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", dbConfig.Host)
	assert.Equal(t, 6543, dbConfig.Port)
	assert.EqualValues(t, 7, dbConfig.MaxConns)
	assert.EqualValues(t, 2, dbConfig.MinConns)
	assert.Equal(t, 250*time.Millisecond, dbConfig.RetryDelay)
	assert.Equal(t, "disable", dbConfig.SSLMode)
	assert.Equal(t, "kindled", dbConfig.DBName)
}

func TestLoadDatabaseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "port not a number", env: map[string]string{"DB_PORT": "five"}, wantErr: "DB_PORT"},
		{name: "port out of range", env: map[string]string{"DB_PORT": "70000"}, wantErr: "DB_PORT"},
		{name: "bad duration", env: map[string]string{"DB_CONNECT_TIMEOUT": "soon"}, wantErr: "DB_CONNECT_TIMEOUT"},
		{name: "unknown sslmode", env: map[string]string{"DB_SSLMODE": "on"}, wantErr: "DB_SSLMODE"},
		{name: "min above max", env: map[string]string{"DB_MAX_CONNECTIONS": "3", "DB_MIN_CONNECTIONS": "4"}, wantErr: "DB_MIN_CONNECTIONS"},
		{name: "no pool", env: map[string]string{"DB_MAX_CONNECTIONS": "0", "DB_MIN_CONNECTIONS": "0"}, wantErr: "DB_MAX_CONNECTIONS"},
		{name: "no attempts", env: map[string]string{"DB_MAX_RETRIES": "0"}, wantErr: "DB_MAX_RETRIES"},
		{
			name:    "every broken key reported",
			env:     map[string]string{"DB_PORT": "x", "DB_RETRY_DELAY": "y"},
			wantErr: "DB_RETRY_DELAY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadDatabaseConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDatabaseConfig_SSLModes(t *testing.T) {
	for _, mode := range []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"} {
		t.Run(mode, func(t *testing.T) {
			t.Setenv("DB_SSLMODE", mode)
			dbConfig, err := LoadDatabaseConfig()
			require.NoError(t, err)
			assert.Equal(t, mode, dbConfig.SSLMode)
		})
	}
}
