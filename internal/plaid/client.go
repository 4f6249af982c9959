// Package plaid is a thin client for the Plaid REST API, covering the link,
// balance, institution and transaction-sync endpoints this application uses.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"anex/internal/config"
)

const (
	defaultTimeout = 60 * time.Second
	apiVersion     = "2020-09-14"

	linkTokenCreatePath     = "/link/token/create"
	publicTokenExchangePath = "/item/public_token/exchange"
	balancesGetPath         = "/accounts/balance/get"
	institutionsGetPath     = "/institutions/get_by_id"
	itemRemovePath          = "/item/remove"
	transactionsSyncPath    = "/transactions/sync"
)

var hosts = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// API is the vendor surface consumed by the finance service and handlers.
// Tests substitute a stub.
type API interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error)
	GetBalances(ctx context.Context, accessToken string) (*BalancesResponse, error)
	GetInstitution(ctx context.Context, institutionID string) (*Institution, error)
	RemoveItem(ctx context.Context, accessToken string) error
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResponse, error)
}

// Client handles communication with the Plaid API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        *config.Config
}

var _ API = (*Client)(nil)

// NewClient creates a Plaid client for the environment named in the config.
func NewClient(cfg *config.Config) *Client {
	base, ok := hosts[cfg.PlaidEnv]
	if !ok {
		base = hosts["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    base,
		cfg:        cfg,
	}
}

// NewClientWithBaseURL creates a client against an explicit base URL.
// Used by tests to point at a local fake.
func NewClientWithBaseURL(cfg *config.Config, baseURL string) *Client {
	c := NewClient(cfg)
	c.baseURL = baseURL
	return c
}

// post sends a JSON request with credentials injected and decodes the
// response into out. Non-2xx responses are decoded into an *APIError.
func (c *Client) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	body["client_id"] = c.cfg.PlaidClientID
	body["secret"] = c.cfg.PlaidSecret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Plaid-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: path}
		if decodeErr := json.Unmarshal(raw, apiErr); decodeErr != nil {
			apiErr.ErrorMessage = string(raw)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

// CreateLinkToken builds a link token describing the configured products,
// country codes and webhook callback for the client-side link flow.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error) {
	body := map[string]interface{}{
		"client_name":   "Anex Connect",
		"language":      "en",
		"products":      c.cfg.PlaidProductList(),
		"country_codes": c.cfg.PlaidCountryCodeList(),
		"user":          map[string]string{"client_user_id": clientUserID},
	}
	if c.cfg.WebhookURL != "" {
		body["webhook"] = c.cfg.WebhookURL
	}
	if c.cfg.PlaidRedirectURI != "" {
		body["redirect_uri"] = c.cfg.PlaidRedirectURI
	}

	var out LinkTokenResponse
	if err := c.post(ctx, linkTokenCreatePath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangePublicToken trades a client-obtained public token for a durable
// access token and item id. Nothing is persisted here; the caller owns that.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	var out ExchangeResponse
	if err := c.post(ctx, publicTokenExchangePath, map[string]interface{}{
		"public_token": publicToken,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBalances fetches current balances for every account under the token's item.
func (c *Client) GetBalances(ctx context.Context, accessToken string) (*BalancesResponse, error) {
	var out BalancesResponse
	if err := c.post(ctx, balancesGetPath, map[string]interface{}{
		"access_token": accessToken,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInstitution resolves an institution id to its metadata.
func (c *Client) GetInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	var out institutionResponse
	if err := c.post(ctx, institutionsGetPath, map[string]interface{}{
		"institution_id": institutionID,
		"country_codes":  c.cfg.PlaidCountryCodeList(),
	}, &out); err != nil {
		return nil, err
	}
	return &out.Institution, nil
}

// RemoveItem unlinks the item at the vendor. The access token is invalid afterwards.
func (c *Client) RemoveItem(ctx context.Context, accessToken string) error {
	return c.post(ctx, itemRemovePath, map[string]interface{}{
		"access_token": accessToken,
	}, nil)
}

// SyncTransactions fetches one page of the item's transaction change stream
// from the given cursor. An empty cursor means start of history.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResponse, error) {
	var out SyncResponse
	if err := c.post(ctx, transactionsSyncPath, map[string]interface{}{
		"access_token": accessToken,
		"cursor":       cursor,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
