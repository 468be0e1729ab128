package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account role used by the authorization policy.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleBusiness Role = "business"
	RoleUser     Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBusiness, RoleUser:
		return true
	}
	return false
}

// Languages supported for localized notifications.
const (
	LanguageEnglish    = "en"
	LanguageIndonesian = "in"
)

// Location is a latitude/longitude pair
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Name holds a person's first and last name. Businesses only use First.
type Name struct {
	First string `json:"first" bson:"first"`
	Last  string `json:"last,omitempty" bson:"last,omitempty"`
}

// Full joins first and last name.
func (n Name) Full() string {
	if n.Last == "" {
		return n.First
	}
	return n.First + " " + n.Last
}

// Account is a user, business, manager or admin stored in MongoDB
type Account struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Role         Role                 `json:"role" bson:"role"`
	Picture      string               `json:"picture,omitempty" bson:"picture,omitempty"`
	Name         Name                 `json:"name" bson:"name"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"-" bson:"password"`
	Gender       string               `json:"gender,omitempty" bson:"gender,omitempty"`
	Birthdate    *time.Time           `json:"birthdate,omitempty" bson:"birthdate,omitempty"`
	Phone        string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Description  string               `json:"description,omitempty" bson:"description,omitempty"`
	Location     *Location            `json:"location,omitempty" bson:"location,omitempty"`
	Rating       float64              `json:"rating" bson:"rating"`
	Confirmation string               `json:"-" bson:"confirmation,omitempty"`
	Private      bool                 `json:"private" bson:"private"`
	Language     string               `json:"language" bson:"language"`
	Approved     bool                 `json:"approved" bson:"approved"`
	Confirmed    bool                 `json:"confirmed" bson:"confirmed"`
	Facebook     string               `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Instagram    string               `json:"instagram,omitempty" bson:"instagram,omitempty"`
	FirebaseUID  string               `json:"-" bson:"firebase_uid,omitempty"`
	Tags         []primitive.ObjectID `json:"tags,omitempty" bson:"tags,omitempty"`
	Preferences  []primitive.ObjectID `json:"preferences,omitempty" bson:"preferences,omitempty"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}

// AccountCompact is the embedded author/actor representation.
type AccountCompact struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Picture string             `json:"picture,omitempty"`
}

// ToCompact converts an account to its compact representation
func (a *Account) ToCompact() AccountCompact {
	return AccountCompact{ID: a.ID, Name: a.Name.Full(), Picture: a.Picture}
}

// PublicProfile is what a caller sees of a private account it does not own.
type PublicProfile struct {
	Picture string `json:"picture,omitempty"`
	Name    Name   `json:"name"`
	Email   string `json:"email"`
}

// SignUpRequest defines the request body for creating an account
type SignUpRequest struct {
	Role        Role     `json:"role" form:"role" validate:"omitempty,oneof=admin manager business user"`
	Email       string   `json:"email" form:"email" validate:"required,email"`
	Password    string   `json:"password" form:"password" validate:"required,min=8"`
	Name        string   `json:"name" form:"name" validate:"omitempty,max=100"`
	FirstName   string   `json:"first_name" form:"first_name" validate:"omitempty,max=50"`
	LastName    string   `json:"last_name" form:"last_name" validate:"omitempty,max=50"`
	Gender      string   `json:"gender" form:"gender" validate:"omitempty,oneof=male female"`
	Birthdate   string   `json:"birthdate" form:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Phone       string   `json:"phone" form:"phone"`
	Latitude    *float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	Description string   `json:"description" form:"description" validate:"omitempty,max=1000"`
	Private     bool     `json:"private" form:"private"`
	Language    string   `json:"language" form:"language" validate:"omitempty,oneof=en in"`
	Facebook    string   `json:"facebook" form:"facebook"`
	Instagram   string   `json:"instagram" form:"instagram"`
}

// SignInRequest defines the request body for password sign-in
type SignInRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	RegistrationToken string `json:"registration_token" validate:"required"`
}

// FirebaseSignInRequest exchanges a Firebase ID token for a local session
type FirebaseSignInRequest struct {
	IDToken           string `json:"id_token" validate:"required"`
	RegistrationToken string `json:"registration_token" validate:"required"`
}

// ConfirmRequest confirms an account with the emailed code
type ConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// EmailRequest carries only an email address
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest defines the request body for changing a password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateProfileRequest defines the profile fields an account may change.
// Nil pointers leave the stored value untouched.
type UpdateProfileRequest struct {
	Email       *string  `json:"email" form:"email" validate:"omitempty,email"`
	Password    *string  `json:"password" form:"password" validate:"omitempty,min=8"`
	Name        *string  `json:"name" form:"name" validate:"omitempty,min=1,max=100"`
	FirstName   *string  `json:"first_name" form:"first_name" validate:"omitempty,min=1,max=50"`
	LastName    *string  `json:"last_name" form:"last_name" validate:"omitempty,max=50"`
	Gender      *string  `json:"gender" form:"gender" validate:"omitempty,oneof=male female"`
	Birthdate   *string  `json:"birthdate" form:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Phone       *string  `json:"phone" form:"phone"`
	Latitude    *float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	Description *string  `json:"description" form:"description" validate:"omitempty,max=1000"`
	Private     *bool    `json:"private" form:"private"`
	Language    *string  `json:"language" form:"language" validate:"omitempty,oneof=en in"`
	Facebook    *string  `json:"facebook" form:"facebook"`
	Instagram   *string  `json:"instagram" form:"instagram"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,dive,mongodb"`
	Preferences []string `json:"preferences" form:"preferences" validate:"omitempty,dive,mongodb"`
	Approved    *bool    `json:"approved" form:"approved"`
}

// ContactBusinessRequest defines the request body for emailing a business
type ContactBusinessRequest struct {
	BusinessID string `json:"business_id" validate:"required,mongodb"`
	Subject    string `json:"subject" validate:"required,max=200"`
	Text       string `json:"text" validate:"required,max=5000"`
}
