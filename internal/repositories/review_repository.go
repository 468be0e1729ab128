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

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	// UpsertRating sets the rating of the user's text-less review of business,
	// creating it when absent. created reports whether it was inserted.
	UpsertRating(ctx context.Context, user, business primitive.ObjectID, rating int) (review *models.Review, created bool, err error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListByBusiness(ctx context.Context, business primitive.ObjectID, page int) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AverageRating averages all ratings of business. No reviews yields 0, 0.
	AverageRating(ctx context.Context, business primitive.ObjectID) (float64, int64, error)
}

// MongoReviewRepository implements ReviewRepository for MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new MongoReviewRepository
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection("reviews")}
}

func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	_, err := r.collection.InsertOne(ctx, review)
	return mongoErr(err)
}

func (r *MongoReviewRepository) UpsertRating(ctx context.Context, user, business primitive.ObjectID, rating int) (*models.Review, bool, error) {
	now := time.Now()
	filter := bson.M{"user": user, "business": business, "text": bson.M{"$exists": false}}
	update := bson.M{
		"$set":         bson.M{"rating": rating, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, mongoErr(err)
	}
	var review models.Review
	if err := r.collection.FindOne(ctx, filter).Decode(&review); err != nil {
		return nil, false, mongoErr(err)
	}
	return &review, res.UpsertedID != nil, nil
}

func (r *MongoReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, mongoErr(err)
	}
	return &review, nil
}

// ListByBusiness returns the reviews of a business that carry text, newest first.
func (r *MongoReviewRepository) ListByBusiness(ctx context.Context, business primitive.ObjectID, page int) ([]models.Review, error) {
	reviews := []models.Review{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"business": business, "text": bson.M{"$exists": true}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *MongoReviewRepository) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now()
	set := bson.M{"rating": review.Rating, "updated_at": review.UpdatedAt}
	update := bson.M{"$set": set}
	if review.Text != "" {
		set["text"] = review.Text
	} else {
		update["$unset"] = bson.M{"text": ""}
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoReviewRepository) AverageRating(ctx context.Context, business primitive.ObjectID) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"business": business}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Average float64 `bson:"average"`
		Count   int64   `bson:"count"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return 0, 0, err
	}
	if len(out) == 0 {
		return 0, 0, nil
	}
	return out[0].Average, out[0].Count, nil
}
