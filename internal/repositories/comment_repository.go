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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByItem(ctx context.Context, item models.ItemRef, page int) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByItem removes every comment on item and returns their ids.
	DeleteByItem(ctx context.Context, item models.ItemRef) ([]primitive.ObjectID, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

func itemFilter(item models.ItemRef) bson.M {
	return bson.M{"item.model": item.Model, "item.document": item.Document}
}

// Create creates a new comment in MongoDB
func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	_, err := r.collection.InsertOne(ctx, comment)
	return mongoErr(err)
}

// GetByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, mongoErr(err)
	}
	return &comment, nil
}

// ListByItem returns the comments on item, oldest first.
func (r *MongoCommentRepository) ListByItem(ctx context.Context, item models.ItemRef, page int) ([]models.Comment, error) {
	comments := []models.Comment{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, itemFilter(item), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Update writes the text and mentions of a comment
func (r *MongoCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": comment.ID}, bson.M{"$set": bson.M{
		"text":       comment.Text,
		"mentions":   comment.Mentions,
		"updated_at": comment.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a comment by ID from MongoDB
func (r *MongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteByItem(ctx context.Context, item models.ItemRef) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "_id", itemFilter(item))
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}
