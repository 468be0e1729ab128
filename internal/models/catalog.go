package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag classifies businesses
type Tag struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Static is an admin managed page such as terms or privacy.
type Static struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Slug      string             `json:"slug" bson:"slug"`
	Title     string             `json:"title" bson:"title"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Preference is a selectable user interest
type Preference struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Feedback is free text sent by any account to the admins
type Feedback struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type StaticRequest struct {
	Slug  string `json:"slug" validate:"required,max=50,alphanum"`
	Title string `json:"title" validate:"required,max=200"`
	Text  string `json:"text" validate:"required"`
}

type PreferenceRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type FeedbackRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}
