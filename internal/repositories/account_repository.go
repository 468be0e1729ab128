package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goer-app/goer/backend/internal/models"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*models.Account, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	// SetRating stores the recomputed average rating of a business.
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	ListByRole(ctx context.Context, role models.Role, page int) ([]models.Account, error)
	Search(ctx context.Context, query string, role models.Role, page int) ([]models.Account, error)
}

// MongoAccountRepository implements AccountRepository for MongoDB
type MongoAccountRepository struct {
	collection *mongo.Collection
}

// NewMongoAccountRepository creates a new MongoAccountRepository
func NewMongoAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{collection: db.Collection("accounts")}
}

// Create inserts a new account. A taken email yields ErrDuplicate.
func (r *MongoAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, account)
	return mongoErr(err)
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var account models.Account
	if err := r.collection.FindOne(ctx, filter).Decode(&account); err != nil {
		return nil, mongoErr(err)
	}
	return &account, nil
}

func (r *MongoAccountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) GetByFirebaseUID(ctx context.Context, uid string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": uid})
}

// GetMany returns the accounts with the given ids, in no particular order.
func (r *MongoAccountRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Account, error) {
	accounts := []models.Account{}
	if len(ids) == 0 {
		return accounts, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Update replaces the stored account with the given one.
func (r *MongoAccountRepository) Update(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAccountRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account and returns what was stored.
func (r *MongoAccountRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var account models.Account
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&account); err != nil {
		return nil, mongoErr(err)
	}
	return &account, nil
}

func (r *MongoAccountRepository) list(ctx context.Context, filter bson.M, page int) ([]models.Account, error) {
	accounts := []models.Account{}
	findOptions := options.Find().
		SetSkip(skip(page)).
		SetLimit(models.PageSize).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *MongoAccountRepository) ListByRole(ctx context.Context, role models.Role, page int) ([]models.Account, error) {
	return r.list(ctx, bson.M{"role": role}, page)
}

// Search matches the query case-insensitively against names. An empty role
// searches users and businesses.
func (r *MongoAccountRepository) Search(ctx context.Context, query string, role models.Role, page int) ([]models.Account, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"name.first": pattern},
			bson.M{"name.last": pattern},
		},
		"confirmed": true,
	}
	if role != "" {
		filter["role"] = role
	} else {
		filter["role"] = bson.M{"$in": bson.A{models.RoleUser, models.RoleBusiness}}
	}
	return r.list(ctx, filter, page)
}
