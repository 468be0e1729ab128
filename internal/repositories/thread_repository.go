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

// ThreadRepository defines the interface for thread data operations
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Thread, error)
	// FindByMembers returns the thread whose member set equals users exactly.
	FindByMembers(ctx context.Context, users []primitive.ObjectID) (*models.Thread, error)
	ListByMember(ctx context.Context, user primitive.ObjectID, page int) ([]models.Thread, error)
	SetTitle(ctx context.Context, id primitive.ObjectID, title string) error
	Touch(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByThread(ctx context.Context, thread primitive.ObjectID, page int) ([]models.Message, error)
	DeleteByThread(ctx context.Context, thread primitive.ObjectID) error
}

// MongoThreadRepository implements ThreadRepository for MongoDB
type MongoThreadRepository struct {
	collection *mongo.Collection
}

// NewMongoThreadRepository creates a new MongoThreadRepository
func NewMongoThreadRepository(db *mongo.Database) *MongoThreadRepository {
	return &MongoThreadRepository{collection: db.Collection("threads")}
}

func (r *MongoThreadRepository) Create(ctx context.Context, thread *models.Thread) error {
	thread.ID = primitive.NewObjectID()
	thread.CreatedAt = time.Now()
	thread.UpdatedAt = thread.CreatedAt
	_, err := r.collection.InsertOne(ctx, thread)
	return mongoErr(err)
}

func (r *MongoThreadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Thread, error) {
	var thread models.Thread
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&thread); err != nil {
		return nil, mongoErr(err)
	}
	return &thread, nil
}

func (r *MongoThreadRepository) FindByMembers(ctx context.Context, users []primitive.ObjectID) (*models.Thread, error) {
	var thread models.Thread
	filter := bson.M{"users": bson.M{"$all": users, "$size": len(users)}}
	if err := r.collection.FindOne(ctx, filter).Decode(&thread); err != nil {
		return nil, mongoErr(err)
	}
	return &thread, nil
}

// ListByMember returns the threads of user, most recently active first.
func (r *MongoThreadRepository) ListByMember(ctx context.Context, user primitive.ObjectID, page int) ([]models.Thread, error) {
	threads := []models.Thread{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"users": user}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *MongoThreadRepository) SetTitle(ctx context.Context, id primitive.ObjectID, title string) error {
	return r.set(ctx, id, bson.M{"title": title, "updated_at": time.Now()})
}

func (r *MongoThreadRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"updated_at": time.Now()})
}

func (r *MongoThreadRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoThreadRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) Create(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, message)
	return mongoErr(err)
}

// ListByThread returns messages newest first.
func (r *MongoMessageRepository) ListByThread(ctx context.Context, thread primitive.ObjectID, page int) ([]models.Message, error) {
	messages := []models.Message{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"thread": thread}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MongoMessageRepository) DeleteByThread(ctx context.Context, thread primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"thread": thread})
	return err
}
