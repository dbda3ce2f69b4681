package models

import (
	"time"
)

// Profile represents a user profile in the system. Rows are created by a database
// trigger when the auth user is created.
type Profile struct {
	ID          string    `json:"id" db:"id"` // UUID that matches auth.users.id
	DisplayName *string   `json:"display_name" db:"display_name"`
	Username    *string   `json:"username" db:"username"`
	Bio         *string   `json:"bio" db:"bio"`
	AvatarURL   *string   `json:"avatar_url" db:"avatar_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileUpdate carries the only fields a user may change. Nil fields are left as is.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	Username    *string `json:"username,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Username == nil && u.Bio == nil && u.AvatarURL == nil
}
