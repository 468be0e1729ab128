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

// SaveRepository defines the interface for business bookmarks
type SaveRepository interface {
	Create(ctx context.Context, save *models.Save) error
	Delete(ctx context.Context, user, business primitive.ObjectID, t models.SaveType) error
	ListByUser(ctx context.Context, user primitive.ObjectID, t models.SaveType, page int) ([]models.Save, error)
}

// MongoSaveRepository implements SaveRepository for MongoDB
type MongoSaveRepository struct {
	collection *mongo.Collection
}

// NewMongoSaveRepository creates a new MongoSaveRepository
func NewMongoSaveRepository(db *mongo.Database) *MongoSaveRepository {
	return &MongoSaveRepository{collection: db.Collection("saves")}
}

func (r *MongoSaveRepository) Create(ctx context.Context, save *models.Save) error {
	save.ID = primitive.NewObjectID()
	save.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, save)
	return mongoErr(err)
}

func (r *MongoSaveRepository) Delete(ctx context.Context, user, business primitive.ObjectID, t models.SaveType) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user": user, "business": business, "type": t})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists saves of user; an empty type lists all of them.
func (r *MongoSaveRepository) ListByUser(ctx context.Context, user primitive.ObjectID, t models.SaveType, page int) ([]models.Save, error) {
	filter := bson.M{"user": user}
	if t != "" {
		filter["type"] = t
	}
	saves := []models.Save{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &saves); err != nil {
		return nil, err
	}
	return saves, nil
}
