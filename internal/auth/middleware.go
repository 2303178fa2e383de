package auth

import (
	"context"
	"net/http"
	"strings"

	"salespulse-api/internal/http/httperr"
	"salespulse-api/internal/observability/logger"

	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// JWTAuthMiddleware validates JWT tokens and injects claims into context
func JWTAuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn(ctx, "missing authorization header",
					logger.Module("auth"),
					logger.Action("validate_token"),
				)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "missing authorization header")
				return
			}

			// Check Bearer format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn(ctx, "invalid authorization header format",
					logger.Module("auth"),
					logger.Action("validate_token"),
				)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidScheme, "invalid authorization header format")
				return
			}

			tokenString := parts[1]

			// Validate token
			claims, err := validator.Validate(tokenString)
			if err != nil {
				code := errorCodeFor(err)
				log.Warn(ctx, "token validation failed",
					logger.Module("auth"),
					logger.Action("validate_token"),
					zap.Error(err),
					zap.String("masked_token", maskToken(tokenString)),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				httperr.Unauthorized401(w, ctx, code, "invalid token")
				return
			}

			// Add claims and user identity to context
			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = logger.SetUserIDInContext(ctx, claims.Subject)

			log.Info(ctx, "authenticated request",
				logger.Module("auth"),
				logger.Action("validate_token"),
				zap.String("subject", claims.Subject),
				zap.String("issuer", claims.Issuer),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// errorCodeFor maps an auth failure to the public error code
func errorCodeFor(err error) string {
	authErr, ok := IsAuthError(err)
	if !ok {
		return httperr.ErrCodeInvalidToken
	}
	switch authErr.Reason {
	case AuthFailureTokenExpired:
		return httperr.ErrCodeTokenExpired
	case AuthFailureInvalidSignature:
		return httperr.ErrCodeInvalidSignature
	case AuthFailureInvalidIssuer:
		return httperr.ErrCodeInvalidIssuer
	case AuthFailureInvalidAudience:
		return httperr.ErrCodeInvalidAudience
	default:
		return httperr.ErrCodeInvalidToken
	}
}

// GetClaims retrieves claims from context
func GetClaims(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok
}
