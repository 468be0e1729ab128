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

// FollowRepository defines the interface for follow edge operations. The
// unique (follower, followee) index makes Create the idempotency check.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Get(ctx context.Context, follower, followee primitive.ObjectID) (*models.Follow, error)
	// Transition moves the edge from one status to another, or returns
	// ErrNotFound when no edge is in the from status.
	Transition(ctx context.Context, follower, followee primitive.ObjectID, from, to models.FollowStatus) (*models.Follow, error)
	// Delete removes the edge, restricted to status when it is not empty.
	Delete(ctx context.Context, follower, followee primitive.ObjectID, status models.FollowStatus) (*models.Follow, error)
	DeleteByAccount(ctx context.Context, account primitive.ObjectID) error
	List(ctx context.Context, account primitive.ObjectID, listType models.FollowListType, page int) ([]models.Follow, error)
	FolloweeIDs(ctx context.Context, follower primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("follows")}
}

func (r *MongoFollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	now := time.Now()
	follow.CreatedAt = now
	follow.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, follow)
	return mongoErr(err)
}

func (r *MongoFollowRepository) Get(ctx context.Context, follower, followee primitive.ObjectID) (*models.Follow, error) {
	var follow models.Follow
	err := r.collection.FindOne(ctx, bson.M{"follower": follower, "followee": followee}).Decode(&follow)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &follow, nil
}

func (r *MongoFollowRepository) Transition(ctx context.Context, follower, followee primitive.ObjectID, from, to models.FollowStatus) (*models.Follow, error) {
	var follow models.Follow
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"follower": follower, "followee": followee, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&follow)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &follow, nil
}

func (r *MongoFollowRepository) Delete(ctx context.Context, follower, followee primitive.ObjectID, status models.FollowStatus) (*models.Follow, error) {
	filter := bson.M{"follower": follower, "followee": followee}
	if status != "" {
		filter["status"] = status
	}
	var follow models.Follow
	if err := r.collection.FindOneAndDelete(ctx, filter).Decode(&follow); err != nil {
		return nil, mongoErr(err)
	}
	return &follow, nil
}

func (r *MongoFollowRepository) DeleteByAccount(ctx context.Context, account primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"follower": account},
		bson.M{"followee": account},
	}})
	return err
}

func (r *MongoFollowRepository) List(ctx context.Context, account primitive.ObjectID, listType models.FollowListType, page int) ([]models.Follow, error) {
	var filter bson.M
	switch listType {
	case models.FollowListFollowing:
		filter = bson.M{"follower": account, "status": models.FollowAccepted}
	case models.FollowListRequests:
		filter = bson.M{"followee": account, "status": models.FollowRequested}
	default:
		filter = bson.M{"followee": account, "status": models.FollowAccepted}
	}
	follows := []models.Follow{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

// FolloweeIDs returns the accounts follower follows with an accepted edge.
func (r *MongoFollowRepository) FolloweeIDs(ctx context.Context, follower primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "followee", bson.M{"follower": follower, "status": models.FollowAccepted})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
