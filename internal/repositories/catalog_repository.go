package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goer-app/goer/backend/internal/models"
)

// CatalogRepository stores admin managed documents (tags, statics,
// preferences, feedback). Callers assign ids before Create.
type CatalogRepository[T any] interface {
	Create(ctx context.Context, doc *T) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	List(ctx context.Context, page int) ([]T, error)
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoCatalogRepository implements CatalogRepository for one collection
type MongoCatalogRepository[T any] struct {
	collection *mongo.Collection
	sort       bson.D
}

// NewMongoCatalogRepository creates a catalog over collection, listed by sortKey ascending.
func NewMongoCatalogRepository[T any](db *mongo.Database, collection, sortKey string) *MongoCatalogRepository[T] {
	return &MongoCatalogRepository[T]{
		collection: db.Collection(collection),
		sort:       bson.D{{Key: sortKey, Value: 1}},
	}
}

func NewTagRepository(db *mongo.Database) *MongoCatalogRepository[models.Tag] {
	return NewMongoCatalogRepository[models.Tag](db, "tags", "name")
}

func NewStaticRepository(db *mongo.Database) *MongoCatalogRepository[models.Static] {
	return NewMongoCatalogRepository[models.Static](db, "statics", "slug")
}

func NewPreferenceRepository(db *mongo.Database) *MongoCatalogRepository[models.Preference] {
	return NewMongoCatalogRepository[models.Preference](db, "preferences", "name")
}

func NewFeedbackRepository(db *mongo.Database) *MongoCatalogRepository[models.Feedback] {
	return &MongoCatalogRepository[models.Feedback]{
		collection: db.Collection("feedback"),
		sort:       bson.D{{Key: "created_at", Value: -1}},
	}
}

func (r *MongoCatalogRepository[T]) Create(ctx context.Context, doc *T) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return mongoErr(err)
}

func (r *MongoCatalogRepository[T]) GetByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mongoErr(err)
	}
	return &doc, nil
}

func (r *MongoCatalogRepository[T]) List(ctx context.Context, page int) ([]T, error) {
	docs := []T{}
	findOptions := options.Find().SetSort(r.sort)
	if page > 0 {
		findOptions.SetSkip(skip(page)).SetLimit(models.PageSize)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *MongoCatalogRepository[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCatalogRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
