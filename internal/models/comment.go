package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a comment on a post, review or another comment
type Comment struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Item      ItemRef              `json:"item" bson:"item"`
	Text      string               `json:"text" bson:"text"`
	Mentions  []primitive.ObjectID `json:"mentions,omitempty" bson:"mentions,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// CommentView is a comment decorated for display
type CommentView struct {
	Comment
	Author    AccountCompact `json:"author"`
	Reactions ReactionCounts `json:"reactions"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Item     ItemRefRequest `json:"item" validate:"required"`
	Text     string         `json:"text" validate:"required,min=1,max=2000"`
	Mentions []string       `json:"mentions" validate:"omitempty,dive,mongodb"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Text     *string  `json:"text" validate:"omitempty,min=1,max=2000"`
	Mentions []string `json:"mentions" validate:"omitempty,dive,mongodb"`
}
