package crm

import (
	"fmt"
)

// AuthError reports a rejected or unreachable token endpoint. The
// client returns it instead of silently switching data sources; the
// caller decides whether to fall back to sample data.
type AuthError struct {
	Status  int    // 0 when the endpoint was unreachable
	Message string
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("crm authentication failed: %s", e.Message)
	}
	return fmt.Sprintf("crm authentication failed: status %d: %s", e.Status, e.Message)
}

// APIError reports an authenticated query that failed with HTTP >= 400
// after the single re-authentication retry.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api error: status %d: %s", e.Status, e.Message)
}
