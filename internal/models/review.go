package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's rating of a business, optionally with text.
// A user holds at most one rating-only review per business.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Business  primitive.ObjectID `json:"business" bson:"business"`
	Rating    int                `json:"rating" bson:"rating"`
	Text      string             `json:"text,omitempty" bson:"text,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReviewView is a review decorated for display
type ReviewView struct {
	Review
	Author    AccountCompact `json:"author"`
	Reactions ReactionCounts `json:"reactions"`
}

// Rating is the recomputed average of a business.
type Rating struct {
	Business primitive.ObjectID `json:"business"`
	Average  float64            `json:"average"`
	Count    int64              `json:"count"`
}

type CreateReviewRequest struct {
	Business string `json:"business" validate:"required,mongodb"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Text     string `json:"text" validate:"omitempty,max=5000"`
}

type UpdateReviewRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text   *string `json:"text" validate:"omitempty,max=5000"`
}
