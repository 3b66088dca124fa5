package models

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types
const (
	UserTypeDonor  = "donor"
	UserTypeDriver = "driver"
)

// Coordinates represents a geographic point
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// User represents a user in the system
type User struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Username         string              `bson:"username" json:"username"`
	Password         string              `bson:"password,omitempty" json:"-"`
	Firstname        string              `bson:"firstname" json:"firstname"`
	Lastname         string              `bson:"lastname" json:"lastname"`
	SecurityQuestion string              `bson:"security_question" json:"securityQuestion,omitempty"`
	SecurityAnswer   string              `bson:"security_answer" json:"-"`
	Points           int                 `bson:"points" json:"points"`
	UserType         string              `bson:"user_type" json:"userType"` // "donor" or "driver"
	ProfileImage     *primitive.ObjectID `bson:"profile_image,omitempty" json:"profileImage,omitempty"`

	// Pickup address for published items
	Address      string `bson:"address,omitempty" json:"address,omitempty"`
	City         string `bson:"city,omitempty" json:"city,omitempty"`
	PhoneNumber  string `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	AddressNotes string `bson:"address_notes,omitempty" json:"addressNotes,omitempty"`

	// Driver-only fields
	IsAvailable     bool                 `bson:"is_available,omitempty" json:"isAvailable,omitempty"`
	CurrentLocation *Coordinates         `bson:"current_location,omitempty" json:"currentLocation,omitempty"`
	ActivePickups   []primitive.ObjectID `bson:"active_pickups,omitempty" json:"activePickups,omitempty"`
}

var (
	ErrBadUsername = errors.New("username must be at least 4 characters and start with a letter")
	ErrBadPassword = errors.New("password must be at least 6 characters and contain at least one special character")
	ErrBadUserType = errors.New(`user type must be "donor" or "driver"`)
)

var (
	usernameStart = regexp.MustCompile(`^[a-zA-Z]`)
	specialChar   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidateUsername checks the signup username policy.
func ValidateUsername(username string) error {
	if len(username) < 4 || !usernameStart.MatchString(username) {
		return ErrBadUsername
	}
	return nil
}

// ValidatePassword checks the signup/reset password policy.
func ValidatePassword(password string) error {
	if len(password) < 6 || !specialChar.MatchString(password) {
		return ErrBadPassword
	}
	return nil
}

// ValidateUserType checks the userType enum. An empty value is allowed
// and defaults to donor at signup.
func ValidateUserType(userType string) error {
	switch userType {
	case "", UserTypeDonor, UserTypeDriver:
		return nil
	default:
		return ErrBadUserType
	}
}

// FullName returns the display name used on the leaderboard.
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}
