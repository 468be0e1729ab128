package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goer-app/goer/backend/internal/models"
)

// ReactionRepository defines the interface for reaction data operations.
// (user, item) is unique; Create returns ErrDuplicate on a second insert.
type ReactionRepository interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	Get(ctx context.Context, user primitive.ObjectID, item models.ItemRef) (*models.Reaction, error)
	SetType(ctx context.Context, user primitive.ObjectID, item models.ItemRef, t models.ReactionType) (*models.Reaction, error)
	Delete(ctx context.Context, user primitive.ObjectID, item models.ItemRef) (*models.Reaction, error)
	DeleteByItem(ctx context.Context, item models.ItemRef) error
	// Counts tallies likes and dislikes of item.
	Counts(ctx context.Context, item models.ItemRef) (likes, dislikes int64, err error)
}

// MongoReactionRepository implements ReactionRepository for MongoDB
type MongoReactionRepository struct {
	collection *mongo.Collection
}

// NewMongoReactionRepository creates a new MongoReactionRepository
func NewMongoReactionRepository(db *mongo.Database) *MongoReactionRepository {
	return &MongoReactionRepository{collection: db.Collection("reactions")}
}

func reactionFilter(user primitive.ObjectID, item models.ItemRef) bson.M {
	f := itemFilter(item)
	f["user"] = user
	return f
}

func (r *MongoReactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	reaction.ID = primitive.NewObjectID()
	reaction.CreatedAt = time.Now()
	reaction.UpdatedAt = reaction.CreatedAt
	_, err := r.collection.InsertOne(ctx, reaction)
	return mongoErr(err)
}

func (r *MongoReactionRepository) Get(ctx context.Context, user primitive.ObjectID, item models.ItemRef) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.collection.FindOne(ctx, reactionFilter(user, item)).Decode(&reaction); err != nil {
		return nil, mongoErr(err)
	}
	return &reaction, nil
}

func (r *MongoReactionRepository) SetType(ctx context.Context, user primitive.ObjectID, item models.ItemRef, t models.ReactionType) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.collection.FindOneAndUpdate(ctx,
		reactionFilter(user, item),
		bson.M{"$set": bson.M{"type": t, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&reaction)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &reaction, nil
}

func (r *MongoReactionRepository) Delete(ctx context.Context, user primitive.ObjectID, item models.ItemRef) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.collection.FindOneAndDelete(ctx, reactionFilter(user, item)).Decode(&reaction); err != nil {
		return nil, mongoErr(err)
	}
	return &reaction, nil
}

func (r *MongoReactionRepository) DeleteByItem(ctx context.Context, item models.ItemRef) error {
	_, err := r.collection.DeleteMany(ctx, itemFilter(item))
	return err
}

func (r *MongoReactionRepository) Counts(ctx context.Context, item models.ItemRef) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: itemFilter(item)}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Type  models.ReactionType `bson:"_id"`
		Count int64               `bson:"count"`
	}
	if err = cursor.All(ctx, &groups); err != nil {
		return 0, 0, err
	}
	var likes, dislikes int64
	for _, g := range groups {
		switch g.Type {
		case models.ReactionLike:
			likes = g.Count
		case models.ReactionDislike:
			dislikes = g.Count
		}
	}
	return likes, dislikes, nil
}
