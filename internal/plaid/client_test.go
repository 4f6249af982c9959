package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anex/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		PlaidEnv:          "sandbox",
		PlaidClientID:     "client-id",
		PlaidSecret:       "secret",
		PlaidProducts:     "transactions",
		PlaidCountryCodes: "US",
		WebhookURL:        "https://example.test/api/finance/webhooks/transactions",
	}
}

func TestCreateLinkToken_SendsConfiguredRequest(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/link/token/create", r.URL.Path)
		require.Equal(t, apiVersion, r.Header.Get("Plaid-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(LinkTokenResponse{LinkToken: "link-sandbox-123"})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(testConfig(), srv.URL)
	resp, err := client.CreateLinkToken(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-123", resp.LinkToken)

	assert.Equal(t, "client-id", got["client_id"])
	assert.Equal(t, "secret", got["secret"])
	assert.Equal(t, []interface{}{"transactions"}, got["products"])
	assert.Equal(t, []interface{}{"US"}, got["country_codes"])
	assert.Equal(t, "https://example.test/api/finance/webhooks/transactions", got["webhook"])
	user := got["user"].(map[string]interface{})
	assert.Equal(t, "42", user["client_user_id"])
}

func TestPost_DecodesVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error_type":      "INVALID_INPUT",
			"error_code":      "INVALID_ACCESS_TOKEN",
			"error_message":   "provided token is invalid",
			"display_message": "The provided token was invalid",
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(testConfig(), srv.URL)
	_, err := client.GetBalances(context.Background(), "bad-token")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_ACCESS_TOKEN", apiErr.ErrorCode)
	assert.Equal(t, "INVALID_INPUT", apiErr.ErrorType)
	assert.Equal(t, "The provided token was invalid", apiErr.DisplayMessage)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestSyncTransactions_PassesCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cursor-1", body["cursor"])
		json.NewEncoder(w).Encode(SyncResponse{
			Added: []SyncTransaction{{
				TransactionID: "txn-1",
				Name:          "STARBUCKS #123",
				Amount:        decimal.RequireFromString("4.25"),
				Date:          "2026-08-01",
				Category:      []string{"Food and Drink", "Coffee"},
			}},
			NextCursor: "cursor-2",
			HasMore:    false,
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(testConfig(), srv.URL)
	resp, err := client.SyncTransactions(context.Background(), "access-token", "cursor-1")
	require.NoError(t, err)
	assert.Equal(t, "cursor-2", resp.NextCursor)
	assert.False(t, resp.HasMore)
	require.Len(t, resp.Added, 1)
	assert.Equal(t, "Food and Drink", resp.Added[0].PrimaryCategory())
	require.NotNil(t, resp.Added[0].ParsedDate())
	assert.Equal(t, "2026-08-01", resp.Added[0].ParsedDate().Format("2006-01-02"))
}

func TestParsedDate_Malformed(t *testing.T) {
	txn := SyncTransaction{Date: "not-a-date"}
	assert.Nil(t, txn.ParsedDate())

	empty := SyncTransaction{}
	assert.Nil(t, empty.ParsedDate())
}
