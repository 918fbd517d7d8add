package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claims structure accepted by the API.
// Subject is the user id; Email is used to match project collaborators.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
