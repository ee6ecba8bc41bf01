// Package mongodb stores stock records and valuation snapshots in MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
)

// Client owns the process-wide MongoDB connection.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, retrying with exponential backoff until the server
// answers a ping or the attempts run out.
func Connect(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.RetryBackoff

	clientOptions := options.Client().ApplyURI(cfg.URI).SetRegistry(NewRegistry())

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := connectOnce(ctx, clientOptions)
		if err == nil {
			logger.Info("connected to mongodb", zap.String("db", cfg.DBName), zap.Int("attempt", attempt))
			return &Client{client: client, db: client.Database(cfg.DBName)}, nil
		}
		lastErr = err

		logger.Warn("mongodb connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", attempts, lastErr)
}

func connectOnce(ctx context.Context, clientOptions *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Ping checks the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}
