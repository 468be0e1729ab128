package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a check-in style post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Business  *primitive.ObjectID  `json:"business,omitempty" bson:"business,omitempty"`
	Title     string               `json:"title,omitempty" bson:"title,omitempty"`
	Location  *Location            `json:"location,omitempty" bson:"location,omitempty"`
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	Pictures  []string             `json:"pictures,omitempty" bson:"pictures,omitempty"`
	Mentions  []primitive.ObjectID `json:"mentions,omitempty" bson:"mentions,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// PostView is a post decorated for display
type PostView struct {
	Post
	Author    AccountCompact `json:"author"`
	Reactions ReactionCounts `json:"reactions"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Business  string   `json:"business" form:"business" validate:"omitempty,mongodb"`
	Title     string   `json:"title" form:"title" validate:"omitempty,max=200"`
	Latitude  *float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	Text      string   `json:"text" form:"text" validate:"omitempty,max=5000"`
	Mentions  []string `json:"mentions" form:"mentions" validate:"omitempty,dive,mongodb"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Text     *string  `json:"text" form:"text" validate:"omitempty,max=5000"`
	Mentions []string `json:"mentions" form:"mentions" validate:"omitempty,dive,mongodb"`
	// RemovePictures lists picture URLs to drop from the post.
	RemovePictures []string `json:"remove_pictures" form:"remove_pictures"`
}
