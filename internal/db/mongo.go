package db

import (
	"context"
	"fmt"

	"github.com/ikkim/cart-backend/config"
	appLogger "github.com/ikkim/cart-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo dials MongoDB and verifies the connection with a ping
func ConnectMongo(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	appLogger.Info("Connecting to MongoDB", map[string]interface{}{
		"database":   cfg.Database,
		"collection": cfg.Collection,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	appLogger.Info("MongoDB connection established successfully", nil)
	return client, nil
}
