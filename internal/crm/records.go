package crm

// Raw record shapes as returned by the Salesforce REST query endpoint.
// Immutable once fetched; owned by the gateway response and copied into
// transformer output.

// AccountRef is the nested account relationship on an opportunity.
type AccountRef struct {
	Name string `json:"Name"`
}

// OwnerRef is the nested owner relationship on an opportunity.
type OwnerRef struct {
	Name  string `json:"Name"`
	Email string `json:"Email"`
}

// Opportunity is a raw CRM opportunity record.
type Opportunity struct {
	ID               string      `json:"Id"`
	Name             string      `json:"Name"`
	Account          *AccountRef `json:"Account"`
	Amount           float64     `json:"Amount"`
	StageName        string      `json:"StageName"`
	Probability      int         `json:"Probability"`
	CloseDate        string      `json:"CloseDate"`
	Owner            *OwnerRef   `json:"Owner"`
	CreatedDate      string      `json:"CreatedDate"`
	LastModifiedDate string      `json:"LastModifiedDate"`
}

// Account is a raw CRM account record.
type Account struct {
	ID                string  `json:"Id"`
	Name              string  `json:"Name"`
	Type              string  `json:"Type"`
	Industry          string  `json:"Industry"`
	AnnualRevenue     float64 `json:"AnnualRevenue"`
	NumberOfEmployees int     `json:"NumberOfEmployees"`
}

// User is a raw CRM user record.
type User struct {
	ID       string `json:"Id"`
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	Title    string `json:"Title"`
	IsActive bool   `json:"IsActive"`
}

// queryResponse is the envelope the query endpoint wraps records in.
type queryResponse[T any] struct {
	TotalSize int  `json:"totalSize"`
	Done      bool `json:"done"`
	Records   []T  `json:"records"`
}

// tokenResponse is the OAuth token endpoint success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	TokenType   string `json:"token_type"`
}

// tokenErrorResponse is the OAuth token endpoint failure body.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
