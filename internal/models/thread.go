package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thread is a group chat over a fixed member set
type Thread struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Users     []primitive.ObjectID `json:"users" bson:"users"`
	Title     string               `json:"title,omitempty" bson:"title,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// HasMember reports whether id belongs to the thread.
func (t *Thread) HasMember(id primitive.ObjectID) bool {
	for _, u := range t.Users {
		if u == id {
			return true
		}
	}
	return false
}

// Message is a single chat message
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Thread    primitive.ObjectID `json:"thread" bson:"thread"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type CreateThreadRequest struct {
	Users []string `json:"users" validate:"required,min=1,dive,mongodb"`
	Title string   `json:"title" validate:"omitempty,max=100"`
	Text  string   `json:"text" validate:"required,min=1,max=5000"`
}

type UpdateThreadRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

type CreateMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}
