package models

import "time"

// Session is one signed-in device (PostgreSQL). It authenticates bearer
// tokens and is the push fan-out list of its account.
type Session struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	AccountID         string    `json:"account_id" gorm:"size:24;not null;uniqueIndex:idx_session_device"`
	Token             string    `json:"-" gorm:"not null;uniqueIndex"`
	RegistrationToken string    `json:"registration_token" gorm:"not null;uniqueIndex:idx_session_device"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
