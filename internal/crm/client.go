package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"salespulse-api/internal/observability/logger"
)

// DefaultTokenURL is the production OAuth2 token endpoint.
const DefaultTokenURL = "https://login.salesforce.com/services/oauth2/token"

// apiVersion pins the REST data API version the queries run against.
const apiVersion = "v58.0"

// Config carries the credentials and endpoints for a Client. The
// client is explicitly constructed and dependency-injected; there is
// no package-level instance.
type Config struct {
	TokenURL      string
	ClientID      string
	ClientSecret  string
	Username      string
	Password      string
	SecurityToken string

	// HTTPClient is optional; a zero value uses http.DefaultClient.
	// Production wiring passes the external client preset so outbound
	// calls carry timeouts and request ID propagation.
	HTTPClient *http.Client
}

// Client is the remote data gateway for the CRM REST API. It obtains a
// bearer token via the resource-owner password grant, issues SOQL read
// queries, and recovers once from credential expiry. It never decides
// to serve fallback data; that policy belongs to the caller.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger

	// The single 401 re-auth retry mutates token state, so reads and
	// writes go through the mutex.
	mu          sync.Mutex
	accessToken string
	instanceURL string
}

// NewClient builds a gateway client from explicit configuration.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient, log: log}
}

// Connected reports whether a bearer token is currently held.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

// Authenticate posts the password grant to the token endpoint. On
// success it stores the bearer token and instance base URL. On any
// non-200 status or transport failure it returns an *AuthError; held
// token state is left untouched so a previously working token keeps
// serving until it expires.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"username":      {c.cfg.Username},
		"password":      {c.cfg.Password + c.cfg.SecurityToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var tokenErr tokenErrorResponse
		msg := "unknown authentication error"
		if err := json.Unmarshal(body, &tokenErr); err == nil {
			if tokenErr.ErrorDescription != "" {
				msg = tokenErr.ErrorDescription
			} else if tokenErr.Error != "" {
				msg = tokenErr.Error
			}
		}
		return &AuthError{Status: resp.StatusCode, Message: msg}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return &AuthError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed token response: %v", err)}
	}

	c.mu.Lock()
	c.accessToken = token.AccessToken
	c.instanceURL = token.InstanceURL
	c.mu.Unlock()

	if c.log != nil {
		c.log.Info(ctx, "crm authentication successful",
			logger.Module("crm"),
			logger.Action("authenticate"),
		)
	}
	return nil
}

// Opportunities fetches open opportunities ordered by last activity.
func (c *Client) Opportunities(ctx context.Context, limit int) ([]Opportunity, error) {
	return runQuery[Opportunity](ctx, c, openOpportunitiesQuery(limit))
}

// ClosedOpportunities fetches opportunities closed within the trailing
// window of the given number of days.
func (c *Client) ClosedOpportunities(ctx context.Context, days int) ([]Opportunity, error) {
	since := time.Now().AddDate(0, 0, -days)
	return runQuery[Opportunity](ctx, c, closedOpportunitiesQuery(since))
}

// Accounts fetches typed accounts ordered by last activity.
func (c *Client) Accounts(ctx context.Context, limit int) ([]Account, error) {
	return runQuery[Account](ctx, c, accountsQuery(limit))
}

// Users fetches active standard users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	return runQuery[User](ctx, c, usersQuery(50))
}

// runQuery executes a SOQL query with the held bearer token. It
// authenticates lazily when no token is held and re-authenticates
// exactly once on a 401 before retrying the same request. Any status
// >= 400 after that surfaces as an *APIError.
func runQuery[T any](ctx context.Context, c *Client, soql string) ([]T, error) {
	if !c.Connected() {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	body, status, err := c.doQuery(ctx, soql)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		// Token expired: recover exactly once.
		if c.log != nil {
			c.log.Warn(ctx, "crm token rejected, re-authenticating",
				logger.Module("crm"),
				logger.Action("reauthenticate"),
			)
		}
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		body, status, err = c.doQuery(ctx, soql)
		if err != nil {
			return nil, err
		}
	}

	if status >= http.StatusBadRequest {
		return nil, &APIError{Status: status, Message: apiErrorMessage(body)}
	}

	var envelope queryResponse[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return envelope.Records, nil
}

// doQuery issues a single authenticated query request and returns the
// raw body and status. Transport failures are returned as-is; HTTP
// error statuses are left for the caller to interpret.
func (c *Client) doQuery(ctx context.Context, soql string) ([]byte, int, error) {
	c.mu.Lock()
	token := c.accessToken
	base := c.instanceURL
	c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/services/data/%s/query/?q=%s", base, apiVersion, url.QueryEscape(soql))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("crm query request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read query response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// apiErrorMessage extracts the server-provided message from an error
// body. The REST API returns either a JSON array of errors or a single
// object depending on the endpoint.
func apiErrorMessage(body []byte) string {
	var list []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 && list[0].Message != "" {
		return list[0].Message
	}
	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &single); err == nil && single.Message != "" {
		return single.Message
	}
	return strings.TrimSpace(string(body))
}
