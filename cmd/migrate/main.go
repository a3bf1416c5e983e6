package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"kindled-backend/internal/config"
	"kindled-backend/internal/domains/entry/repository"
	"kindled-backend/internal/infrastructure/database"
	"kindled-backend/internal/migrations"
	"kindled-backend/pkg/logger"
)

// Context is handed to every command's Run
type Context struct {
	context.Context
}

var CLI struct {
	Version  kong.VersionFlag
	LogLevel string `help:"Log level." env:"LOG_LEVEL" default:"info"`

	Up      UpCmd      `cmd:"" help:"Apply pending Postgres migrations."`
	Status  StatusCmd  `cmd:"" help:"Show Postgres migration status."`
	Indexes IndexesCmd `cmd:"" help:"Ensure MongoDB indexes on the entries collection."`
}

type UpCmd struct{}

func (c *UpCmd) Run(ctx *Context) error {
	return withPostgres(ctx, func(db *database.PostgresDB) error {
		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		return migrations.Up(ctx, sqlDB)
	})
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	return withPostgres(ctx, func(db *database.PostgresDB) error {
		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		return migrations.Status(ctx, sqlDB)
	})
}

type IndexesCmd struct {
	URI        string        `help:"MongoDB connection URI." env:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string        `help:"Database name." env:"MONGO_DATABASE" default:"kindled"`
	Collection string        `help:"Collection name." env:"MONGO_COLLECTION" default:"notes"`
	Timeout    time.Duration `help:"Connect timeout." env:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

func (c *IndexesCmd) Run(ctx *Context) error {
	db := database.NewMongoDB(&database.MongoConfig{
		URI:            c.URI,
		Database:       c.Database,
		Collection:     c.Collection,
		ConnectTimeout: c.Timeout,
	})
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer db.Close(context.Background())

	coll, err := db.Collection()
	if err != nil {
		return err
	}
	if err := repository.EnsureMongoIndexes(ctx, coll); err != nil {
		return err
	}

	log.Info().Str("collection", c.Collection).Msg("indexes ensured")
	return nil
}

func withPostgres(ctx context.Context, fn func(db *database.PostgresDB) error) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return err
	}

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("migrate"),
		kong.Description("kindled storage maintenance"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	logger.Init(os.Getenv("APP_ENV"), CLI.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&Context{Context: ctx}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
