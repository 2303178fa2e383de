package crm

import (
	"context"
)

// Source is the read surface the analytics layer consumes. Both the
// live Client and the static SampleSource satisfy it, which lets the
// service layer swap in fallback data without the consumers noticing.
type Source interface {
	Opportunities(ctx context.Context, limit int) ([]Opportunity, error)
	ClosedOpportunities(ctx context.Context, days int) ([]Opportunity, error)
	Accounts(ctx context.Context, limit int) ([]Account, error)
	Users(ctx context.Context) ([]User, error)
}

// Gateway is a Source that additionally manages an authenticated
// session with the upstream CRM.
type Gateway interface {
	Source
	Authenticate(ctx context.Context) error
	Connected() bool
}

var (
	_ Gateway = (*Client)(nil)
	_ Source  = (*SampleSource)(nil)
)
