package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig cấu hình kết nối MongoDB
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// MongoDB quản lý client lifecycle, tương tự PostgresDB
type MongoDB struct {
	Client *mongo.Client
	Config *MongoConfig
}

func NewMongoDB(config *MongoConfig) *MongoDB {
	return &MongoDB{Config: config}
}

// Connect opens the client and verifies it with a primary ping
func (db *MongoDB) Connect(ctx context.Context) error {
	log.Info().Str("database", db.Config.Database).Msg("[MONGO] connecting")

	connectCtx, cancel := context.WithTimeout(ctx, db.Config.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(db.Config.URI).
		SetConnectTimeout(db.Config.ConnectTimeout).
		SetServerSelectionTimeout(db.Config.ConnectTimeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping failed: %w", err)
	}

	db.Client = client
	log.Info().Msg("[MONGO] connected")
	return nil
}

// Collection returns the configured entries collection
func (db *MongoDB) Collection() (*mongo.Collection, error) {
	if db.Client == nil {
		return nil, fmt.Errorf("mongo client is not initialized")
	}
	return db.Client.Database(db.Config.Database).Collection(db.Config.Collection), nil
}

func (db *MongoDB) HealthCheck(ctx context.Context) error {
	if db.Client == nil {
		return fmt.Errorf("mongo client is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Client.Ping(healthCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (db *MongoDB) Close(ctx context.Context) error {
	if db.Client == nil {
		return nil
	}
	err := db.Client.Disconnect(ctx)
	db.Client = nil
	if err != nil {
		return fmt.Errorf("mongo disconnect failed: %w", err)
	}
	log.Info().Msg("[MONGO] disconnected")
	return nil
}
