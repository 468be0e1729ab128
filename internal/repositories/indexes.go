package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the MongoDB indexes. The unique ones are the
// idempotency keys for follows, reactions and saves.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"accounts": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "firebase_uid", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		"follows": {
			{Keys: bson.D{{Key: "follower", Value: 1}, {Key: "followee", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "followee", Value: 1}, {Key: "status", Value: 1}}},
		},
		"reactions": {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "item.model", Value: 1}, {Key: "item.document", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "item.model", Value: 1}, {Key: "item.document", Value: 1}}},
		},
		"saves": {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "business", Value: 1}, {Key: "type", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"posts":    {{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}}},
		"reviews":  {{Keys: bson.D{{Key: "business", Value: 1}, {Key: "created_at", Value: -1}}}},
		"comments": {{Keys: bson.D{{Key: "item.model", Value: 1}, {Key: "item.document", Value: 1}, {Key: "created_at", Value: 1}}}},
		"threads":  {{Keys: bson.D{{Key: "users", Value: 1}}}},
		"messages": {{Keys: bson.D{{Key: "thread", Value: 1}, {Key: "created_at", Value: -1}}}},
		"events":   {{Keys: bson.D{{Key: "thread", Value: 1}, {Key: "starts_at", Value: 1}}}},
		"tags":     {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		"statics":  {{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)}},
		"preferences": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
