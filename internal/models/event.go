package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RSVP is an attendance choice. RSVPNone clears membership.
type RSVP string

const (
	RSVPGoing    RSVP = "going"
	RSVPDeclined RSVP = "declined"
	RSVPNone     RSVP = "none"
)

// Event is a gathering scheduled inside a thread. An account appears in at
// most one of Going and Declined.
type Event struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User        primitive.ObjectID   `json:"user" bson:"user"`
	Thread      primitive.ObjectID   `json:"thread" bson:"thread"`
	Title       string               `json:"title" bson:"title"`
	Location    Location             `json:"location" bson:"location"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	StartsAt    time.Time            `json:"starts_at" bson:"starts_at"`
	EndsAt      time.Time            `json:"ends_at" bson:"ends_at"`
	Going       []primitive.ObjectID `json:"going" bson:"going"`
	Declined    []primitive.ObjectID `json:"declined" bson:"declined"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Latitude    *float64  `json:"latitude" validate:"required,latitude"`
	Longitude   *float64  `json:"longitude" validate:"required,longitude"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Latitude    *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64   `json:"longitude" validate:"omitempty,longitude"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type RSVPRequest struct {
	Choice RSVP `json:"choice" validate:"required,oneof=going declined none"`
}
