package auth

import (
	"time"
)

// IdentityClaims represents the claims in an identity token issued by the
// external sign-in provider. They are encrypted in v4.local tokens.
type IdentityClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"` // provider user ID
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity is the verified subject of a request.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	Picture    string
}

// Identity returns the subject carried by the claims.
func (c *IdentityClaims) Identity() Identity {
	return Identity{
		ExternalID: c.Subject,
		Email:      c.Email,
		Name:       c.Name,
		Picture:    c.Picture,
	}
}
