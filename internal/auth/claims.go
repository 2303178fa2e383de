package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims represents the JWT claims for the API.
// Subject carries the user ID; Name is the display name.
type CustomClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on custom claims
func (c *CustomClaims) Validate() error {
	if c.Subject == "" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
