package crm

import (
	"context"
)

// SampleSource serves a fixed, hand-authored dataset structurally
// identical to live CRM records. It backs the dashboard whenever
// authentication is unreachable or rejected so the UI always has
// something to render.
type SampleSource struct{}

func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

func (s *SampleSource) Opportunities(_ context.Context, limit int) ([]Opportunity, error) {
	return truncate(sampleOpportunities, limit), nil
}

func (s *SampleSource) ClosedOpportunities(_ context.Context, _ int) ([]Opportunity, error) {
	return append([]Opportunity(nil), sampleClosedOpportunities...), nil
}

func (s *SampleSource) Accounts(_ context.Context, limit int) ([]Account, error) {
	return truncate(sampleAccounts, limit), nil
}

func (s *SampleSource) Users(_ context.Context) ([]User, error) {
	return append([]User(nil), sampleUsers...), nil
}

func truncate[T any](records []T, limit int) []T {
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return append([]T(nil), records...)
}

var sampleOpportunities = []Opportunity{
	{
		ID:               "sample_001",
		Name:             "Enterprise Software License - Acme Corp",
		Account:          &AccountRef{Name: "Acme Corporation"},
		Amount:           125000,
		StageName:        "Proposal/Price Quote",
		Probability:      75,
		CloseDate:        "2024-08-15",
		Owner:            &OwnerRef{Name: "Sarah Johnson", Email: "sarah.johnson@company.com"},
		CreatedDate:      "2024-07-01T10:00:00.000Z",
		LastModifiedDate: "2024-07-20T14:30:00.000Z",
	},
	{
		ID:               "sample_002",
		Name:             "Cloud Migration Services - TechStart Inc",
		Account:          &AccountRef{Name: "TechStart Inc"},
		Amount:           85000,
		StageName:        "Negotiation/Review",
		Probability:      90,
		CloseDate:        "2024-08-10",
		Owner:            &OwnerRef{Name: "Mike Chen", Email: "mike.chen@company.com"},
		CreatedDate:      "2024-06-15T09:00:00.000Z",
		LastModifiedDate: "2024-07-18T16:45:00.000Z",
	},
	{
		ID:               "sample_003",
		Name:             "Annual Support Contract - Global Industries",
		Account:          &AccountRef{Name: "Global Industries"},
		Amount:           45000,
		StageName:        "Qualification",
		Probability:      60,
		CloseDate:        "2024-09-01",
		Owner:            &OwnerRef{Name: "Emily Rodriguez", Email: "emily.rodriguez@company.com"},
		CreatedDate:      "2024-07-10T11:30:00.000Z",
		LastModifiedDate: "2024-07-19T13:20:00.000Z",
	},
	{
		ID:               "sample_004",
		Name:             "Custom Development Project - StartupXYZ",
		Account:          &AccountRef{Name: "StartupXYZ"},
		Amount:           65000,
		StageName:        "Prospecting",
		Probability:      25,
		CloseDate:        "2024-09-15",
		Owner:            &OwnerRef{Name: "David Kim", Email: "david.kim@company.com"},
		CreatedDate:      "2024-07-05T08:15:00.000Z",
		LastModifiedDate: "2024-07-17T10:10:00.000Z",
	},
	{
		ID:               "sample_005",
		Name:             "Training and Consulting - MegaCorp",
		Account:          &AccountRef{Name: "MegaCorp"},
		Amount:           95000,
		StageName:        "Closed Won",
		Probability:      100,
		CloseDate:        "2024-07-25",
		Owner:            &OwnerRef{Name: "Lisa Wang", Email: "lisa.wang@company.com"},
		CreatedDate:      "2024-06-01T14:00:00.000Z",
		LastModifiedDate: "2024-07-25T17:30:00.000Z",
	},
}

var sampleClosedOpportunities = []Opportunity{
	{
		ID:               "sample_closed_001",
		Name:             "Q2 Software Upgrade - RetailChain",
		Account:          &AccountRef{Name: "RetailChain"},
		Amount:           75000,
		StageName:        "Closed Won",
		Probability:      100,
		CloseDate:        "2024-07-15",
		Owner:            &OwnerRef{Name: "Sarah Johnson", Email: "sarah.johnson@company.com"},
		CreatedDate:      "2024-05-01T10:00:00.000Z",
		LastModifiedDate: "2024-07-15T16:00:00.000Z",
	},
	{
		ID:               "sample_closed_002",
		Name:             "Security Audit Services - FinanceFirst",
		Account:          &AccountRef{Name: "FinanceFirst"},
		Amount:           55000,
		StageName:        "Closed Won",
		Probability:      100,
		CloseDate:        "2024-07-08",
		Owner:            &OwnerRef{Name: "Mike Chen", Email: "mike.chen@company.com"},
		CreatedDate:      "2024-05-15T09:30:00.000Z",
		LastModifiedDate: "2024-07-08T14:20:00.000Z",
	},
}

var sampleAccounts = []Account{
	{ID: "sample_acc_001", Name: "Acme Corporation", Type: "Customer", Industry: "Technology", AnnualRevenue: 50000000, NumberOfEmployees: 500},
	{ID: "sample_acc_002", Name: "TechStart Inc", Type: "Prospect", Industry: "Software", AnnualRevenue: 10000000, NumberOfEmployees: 150},
	{ID: "sample_acc_003", Name: "Global Industries", Type: "Customer", Industry: "Manufacturing", AnnualRevenue: 100000000, NumberOfEmployees: 1200},
}

var sampleUsers = []User{
	{ID: "sample_user_001", Name: "Sarah Johnson", Email: "sarah.johnson@company.com", Title: "Senior Sales Manager", IsActive: true},
	{ID: "sample_user_002", Name: "Mike Chen", Email: "mike.chen@company.com", Title: "Account Executive", IsActive: true},
	{ID: "sample_user_003", Name: "Emily Rodriguez", Email: "emily.rodriguez@company.com", Title: "Sales Representative", IsActive: true},
	{ID: "sample_user_004", Name: "David Kim", Email: "david.kim@company.com", Title: "Business Development Manager", IsActive: true},
	{ID: "sample_user_005", Name: "Lisa Wang", Email: "lisa.wang@company.com", Title: "Sales Director", IsActive: true},
}
