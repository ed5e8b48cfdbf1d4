package database

import (
	"context"
	"fmt"
	"time"

	"property-catalog/pkg/config"
	"property-catalog/pkg/logger"
	"property-catalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	MongoClient *mongo.Client
	DB          *mongo.Database
)

const connectTimeout = 10 * time.Second

func observe(operation, collection string, start time.Time, err error) {
	metrics.MongoOperationDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues(operation, collection).Inc()
	}
}

// InitDB connects to MongoDB, verifies the primary is reachable and
// selects the catalog database.
func InitDB(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetMaxPoolSize(100)

	start := time.Now()
	client, err := mongo.Connect(ctx, opts)
	observe("connect", "", start, err)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	start = time.Now()
	err = client.Ping(ctx, readpref.Primary())
	observe("ping", "", start, err)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	DB = client.Database(cfg.Database.DBName)

	logger.GlobalLogger.Printf("MongoDB connected, database %q", cfg.Database.DBName)
	return nil
}

// Collection returns the configured property collection.
func Collection(cfg *config.Config) *mongo.Collection {
	return DB.Collection(cfg.Database.Collection)
}

func CloseDB() {
	if MongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := MongoClient.Disconnect(ctx)
	observe("disconnect", "", start, err)
	if err != nil {
		logger.GlobalLogger.Errorf("error closing MongoDB: %v", err)
		return
	}
	MongoClient, DB = nil, nil
	logger.GlobalLogger.Println("MongoDB connection closed")
}
