package database

import (
	"context"
	"time"

	"property-catalog/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PropertyIndexes back the listing filters and the orphan sweep.
func PropertyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "propertyName", Value: 1}},
			Options: options.Index().SetName("name"),
		},
		{
			Keys:    bson.D{{Key: "propertyLocation", Value: 1}, {Key: "propertyType", Value: 1}},
			Options: options.Index().SetName("location_type"),
		},
		{
			Keys:    bson.D{{Key: "propertyPrice", Value: 1}},
			Options: options.Index().SetName("price"),
		},
		{
			Keys:    bson.D{{Key: "propertyImage", Value: 1}},
			Options: options.Index().SetName("image").SetSparse(true),
		},
	}
}

// CreatePropertyIndexes is idempotent; existing indexes with the same
// definition are left alone.
func CreatePropertyIndexes(coll *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	names, err := coll.Indexes().CreateMany(ctx, PropertyIndexes())
	observe("create_indexes", coll.Name(), start, err)
	if err != nil {
		return err
	}

	logger.GlobalLogger.Printf("MongoDB indexes ensured on %s: %v", coll.Name(), names)
	return nil
}
