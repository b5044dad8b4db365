package domain

import "strings"

// User is the local record of an identity owned by the external auth provider.
// It is created on first authenticated access and never deleted in-core.
type User struct {
	Record
	ExternalID string `json:"external_id"` // auth provider subject
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasEmail reports whether notifications can be addressed to the user.
func (u *User) HasEmail() bool {
	return u.Email != ""
}
