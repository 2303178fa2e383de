package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SetClaimsForTesting injects claims into a context to simulate an
// authenticated request. Only for use in tests.
func SetClaimsForTesting(ctx context.Context, claims *CustomClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// MintToken signs an HS256 token for tests.
func MintToken(secret []byte, subject, name, issuer, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
