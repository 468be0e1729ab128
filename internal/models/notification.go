package models

import "time"

// NotificationType identifies the domain event behind a notification
type NotificationType string

const (
	NotificationRequest  NotificationType = "request"
	NotificationAccept   NotificationType = "accept"
	NotificationReaction NotificationType = "reaction"
	NotificationReview   NotificationType = "review"
	NotificationComment  NotificationType = "comment"
	NotificationMention  NotificationType = "mention"
	NotificationMessage  NotificationType = "message"
)

// Notification is a durable notification record (PostgreSQL). Account and
// document ids are MongoDB ObjectIDs stored as hex strings.
type Notification struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Type         NotificationType `json:"type" gorm:"size:20;index"`
	SenderID     string           `json:"sender_id" gorm:"size:24;index"`
	ReceiverID   string           `json:"receiver_id" gorm:"size:24;index"`
	ItemModel    ItemModel        `json:"item_model,omitempty" gorm:"size:20"`
	ItemDocument string           `json:"item_document,omitempty" gorm:"size:24;index"`
	// Detail is the parent model for comments and the reaction type for reactions.
	Detail    string    `json:"detail,omitempty" gorm:"size:20"`
	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationFilter selects notifications to remove. Empty fields match anything.
type NotificationFilter struct {
	Type       NotificationType
	SenderID   string
	ReceiverID string
	Item       ItemRef
}

// NotificationView is a localized notification with its sender.
type NotificationView struct {
	Notification
	Sender *AccountCompact `json:"sender,omitempty"`
	Title  string          `json:"title"`
	Body   string          `json:"body"`
}
