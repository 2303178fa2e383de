package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConnectionTestRequest carries a set of CRM credentials to verify.
// The security token is optional; Salesforce only requires it when the
// caller's IP is outside the org's trusted ranges.
type ConnectionTestRequest struct {
	ClientID      string `json:"clientId" validate:"required"`
	ClientSecret  string `json:"clientSecret" validate:"required"`
	Username      string `json:"username" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	SecurityToken string `json:"securityToken"`
	TokenURL      string `json:"tokenUrl" validate:"omitempty,url"`
}

// Validate sanitizes and validates the request.
func (r *ConnectionTestRequest) Validate() error {
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Username = strings.TrimSpace(r.Username)
	r.TokenURL = strings.TrimSpace(r.TokenURL)

	validate := validator.New()
	return validate.Struct(r)
}

// ConnectionTestResult reports the outcome of a credential check.
type ConnectionTestResult struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}
