package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionType is like or dislike
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Reaction is unique per (User, Item).
type Reaction struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Item      ItemRef            `json:"item" bson:"item"`
	Type      ReactionType       `json:"type" bson:"type"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReactionCounts is computed on read for a single item.
type ReactionCounts struct {
	Likes    int64        `json:"likes"`
	Dislikes int64        `json:"dislikes"`
	Mine     ReactionType `json:"mine,omitempty"`
}

type ReactionRequest struct {
	Item ItemRefRequest `json:"item" validate:"required"`
	Type ReactionType   `json:"type" validate:"required,oneof=like dislike"`
}

type DeleteReactionRequest struct {
	Item ItemRefRequest `json:"item" validate:"required"`
}
