package domain

import "time"

// User is a marketplace profile. Authentication lives upstream; this record
// only carries what the server denormalizes into notifications and listings.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarColor string    `json:"avatar_color,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUser creates a profile record.
func NewUser(id, displayName string) *User {
	now := time.Now()
	return &User{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
