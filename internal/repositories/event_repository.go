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

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListByThread(ctx context.Context, thread primitive.ObjectID, page int) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByThread(ctx context.Context, thread primitive.ObjectID) error
	// SetRSVP moves user into the chosen partition in a single update.
	SetRSVP(ctx context.Context, id, user primitive.ObjectID, choice models.RSVP) (*models.Event, error)
}

// MongoEventRepository implements EventRepository for MongoDB
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoEventRepository
func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{collection: db.Collection("events")}
}

func (r *MongoEventRepository) Create(ctx context.Context, event *models.Event) error {
	event.ID = primitive.NewObjectID()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	event.Going = orEmpty(event.Going)
	event.Declined = orEmpty(event.Declined)
	_, err := r.collection.InsertOne(ctx, event)
	return mongoErr(err)
}

func (r *MongoEventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, mongoErr(err)
	}
	return &event, nil
}

func (r *MongoEventRepository) ListByThread(ctx context.Context, thread primitive.ObjectID, page int) ([]models.Event, error) {
	events := []models.Event{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "starts_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"thread": thread}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Update writes the descriptive fields; RSVP partitions are only changed by SetRSVP.
func (r *MongoEventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{"$set": bson.M{
		"title":       event.Title,
		"location":    event.Location,
		"description": event.Description,
		"starts_at":   event.StartsAt,
		"ends_at":     event.EndsAt,
		"updated_at":  event.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoEventRepository) DeleteByThread(ctx context.Context, thread primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"thread": thread})
	return err
}

func (r *MongoEventRepository) SetRSVP(ctx context.Context, id, user primitive.ObjectID, choice models.RSVP) (*models.Event, error) {
	var update bson.M
	switch choice {
	case models.RSVPGoing:
		update = bson.M{"$pull": bson.M{"declined": user}, "$addToSet": bson.M{"going": user}}
	case models.RSVPDeclined:
		update = bson.M{"$pull": bson.M{"going": user}, "$addToSet": bson.M{"declined": user}}
	default:
		update = bson.M{"$pull": bson.M{"going": user, "declined": user}}
	}
	var event models.Event
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &event, nil
}
