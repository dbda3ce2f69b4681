package models

// User is the identity resolved from a bearer token. It is owned by the identity
// provider and read-only here.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
