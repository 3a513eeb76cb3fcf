package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the checkout pipeline relies on:
// the unique order_id index on payments and the unique user_id index
// on enrollments (one document per buyer).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	paymentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}
	if _, err := db.Collection("payments").Indexes().CreateMany(ctx, paymentIndexes); err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}

	enrollmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("enrollments").Indexes().CreateMany(ctx, enrollmentIndexes); err != nil {
		return fmt.Errorf("failed to create enrollment indexes: %w", err)
	}

	return nil
}
