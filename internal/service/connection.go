package service

import (
	"context"

	"salespulse-api/internal/crm"
	"salespulse-api/internal/observability/logger"
)

// TestConnection attempts a one-off authenticate with the supplied
// credentials. It builds a throwaway client so server state is never
// touched; the returned error is the *crm.AuthError from the token
// endpoint, or nil on success.
func TestConnection(ctx context.Context, cfg crm.Config, log *logger.Logger) error {
	client := crm.NewClient(cfg, log)
	return client.Authenticate(ctx)
}
