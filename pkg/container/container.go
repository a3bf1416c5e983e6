package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"kindled-backend/internal/config"
	entryHandler "kindled-backend/internal/domains/entry/handler"
	entryRepo "kindled-backend/internal/domains/entry/repository"
	"kindled-backend/internal/domains/entry/secret"
	entryService "kindled-backend/internal/domains/entry/service"
	"kindled-backend/internal/domains/entry/slug"
	"kindled-backend/internal/infrastructure/cache"
	"kindled-backend/internal/infrastructure/database"
	"kindled-backend/internal/infrastructure/moderation"
	"kindled-backend/internal/infrastructure/ratelimit"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config   *config.Config
	Postgres *database.PostgresDB // nil unless STORE_DRIVER=postgres
	Mongo    *database.MongoDB    // nil unless STORE_DRIVER=mongo
	Redis    *cache.RedisClient   // nil when disabled
	Limiter  ratelimit.Limiter
	Gate     moderation.Gate

	// ========================================
	// REPOSITORY / SERVICE / HANDLER
	// ========================================
	EntryStore   entryRepo.DocumentStore
	EntryService entryService.ServiceInterface

	NoteHandler          *entryHandler.EntryHandler
	PrayerRequestHandler *entryHandler.EntryHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph in order:
// store -> rate limiter -> moderation -> service -> handlers
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Str("store", cfg.Store.Driver).Msg("initializing container")

	c := &Container{Config: cfg}

	// STEP 1: entry store
	if err := c.initStore(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	// STEP 2: rate limiter
	c.initLimiter(ctx)

	// STEP 3: moderation
	gate, err := moderation.NewGate(moderation.Config{
		Provider: cfg.Moderation.Provider,
		Stream: moderation.StreamConfig{
			APIKey:    cfg.Moderation.StreamAPIKey,
			APISecret: cfg.Moderation.StreamAPISecret,
			BaseURL:   cfg.Moderation.StreamBaseURL,
			ConfigKey: cfg.Moderation.StreamConfigKey,
		},
		Blocklist: cfg.Moderation.Blocklist,
	})
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init moderation: %w", err)
	}
	c.Gate = gate
	if cfg.Moderation.Provider == moderation.ProviderStream && cfg.Moderation.StreamAPIKey == "" {
		log.Warn().Msg("stream moderation has no credentials, every create and edit will fail closed")
	}

	// STEP 4: service + handlers
	c.EntryService = entryService.NewEntryService(
		c.EntryStore,
		c.Gate,
		slug.NewGenerator(slug.Policy(cfg.Slug.Policy), cfg.Slug.MaxLength),
		secret.NewBlake2bHasher(),
		entryService.Config{ModerationTimeout: cfg.Moderation.Timeout},
	)
	c.NoteHandler = entryHandler.NewNoteHandler(c.EntryService)
	c.PrayerRequestHandler = entryHandler.NewPrayerRequestHandler(c.EntryService)

	log.Info().Msg("container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore(ctx context.Context) error {
	switch c.Config.Store.Driver {
	case config.StoreMongo:
		mongoDB := database.NewMongoDB(&database.MongoConfig{
			URI:            c.Config.Mongo.URI,
			Database:       c.Config.Mongo.Database,
			Collection:     c.Config.Mongo.Collection,
			ConnectTimeout: c.Config.Mongo.ConnectTimeout,
		})
		if err := mongoDB.Connect(ctx); err != nil {
			return err
		}
		c.Mongo = mongoDB

		coll, err := mongoDB.Collection()
		if err != nil {
			return err
		}
		if err := entryRepo.EnsureMongoIndexes(ctx, coll); err != nil {
			return err
		}
		c.EntryStore = entryRepo.NewMongoStore(coll)

	case config.StorePostgres:
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db := database.NewPostgresDB(dbConfig)
		if err := db.Connect(ctx); err != nil {
			return err
		}
		c.Postgres = db

		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		c.EntryStore = entryRepo.NewPostgresStore(sqlDB)

	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, entries are lost on restart")
		c.EntryStore = entryRepo.NewMemoryStore()

	default:
		return fmt.Errorf("unknown store driver %q", c.Config.Store.Driver)
	}
	return nil
}

// initLimiter prefers Redis; a Redis outage degrades to per-process limits
func (c *Container) initLimiter(ctx context.Context) {
	memory := ratelimit.NewMemoryLimiter()

	if !c.Config.Redis.Enabled {
		log.Info().Msg("redis disabled, using in-process rate limiter")
		c.Limiter = memory
		return
	}

	client := cache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := client.Connect(ctx); err != nil {
		// Non-critical: the fallback limiter covers outages
		log.Warn().Err(err).Msg("redis connection failed (non-critical)")
	}
	c.Redis = client
	c.Limiter = ratelimit.NewFallbackLimiter(ratelimit.NewRedisLimiter(client.Client), memory)
}

// ========================================
// HELPER METHODS
// ========================================

// RateLimitRule returns the configured budget for one route class
func (c *Container) RateLimitRule(limit int) ratelimit.Rule {
	return ratelimit.Rule{Limit: limit, Window: c.Config.RateLimit.Window}
}

// Health pings every configured dependency: "up", "down" or "disabled"
func (c *Container) Health(ctx context.Context) map[string]string {
	checks := map[string]string{"store": "up", "redis": "up"}

	if err := c.EntryService.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("store health check failed")
		checks["store"] = "down"
	}

	switch {
	case c.Redis == nil:
		checks["redis"] = "disabled"
	case c.Redis.HealthCheck(ctx) != nil:
		checks["redis"] = "down"
	}

	return checks
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to close mongo")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}

	log.Info().Msg("container cleanup completed")
}
