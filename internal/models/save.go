package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SaveType string

const (
	SaveGone     SaveType = "gone"
	SaveToGo     SaveType = "togo"
	SaveFavorite SaveType = "favorite"
)

// Save bookmarks a business. Unique per (User, Business, Type).
type Save struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Business  primitive.ObjectID `json:"business" bson:"business"`
	Type      SaveType           `json:"type" bson:"type"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type SaveRequest struct {
	Business string   `json:"business" validate:"required,mongodb"`
	Type     SaveType `json:"type" validate:"required,oneof=gone togo favorite"`
}
