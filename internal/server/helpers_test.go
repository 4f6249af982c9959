package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"anex/internal/cache"
	"anex/internal/config"
	"anex/internal/models"
	"anex/internal/plaid"
	"anex/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "SuperSecret123!"

// fakeVendor is an in-memory banking vendor double for handler tests.
type fakeVendor struct {
	linkToken   string
	accessToken string
	itemID      string
	balances    *plaid.BalancesResponse
	institution *plaid.Institution
	syncPages   []plaid.SyncResponse
	syncCalls   int
	removed     []string
}

func (f *fakeVendor) CreateLinkToken(_ context.Context, _ string) (*plaid.LinkTokenResponse, error) {
	return &plaid.LinkTokenResponse{LinkToken: f.linkToken, Expiration: "2026-09-01T00:00:00Z"}, nil
}

func (f *fakeVendor) ExchangePublicToken(_ context.Context, _ string) (*plaid.ExchangeResponse, error) {
	return &plaid.ExchangeResponse{AccessToken: f.accessToken, ItemID: f.itemID}, nil
}

func (f *fakeVendor) GetBalances(_ context.Context, _ string) (*plaid.BalancesResponse, error) {
	if f.balances == nil {
		return nil, errors.New("no balances configured")
	}
	return f.balances, nil
}

func (f *fakeVendor) GetInstitution(_ context.Context, _ string) (*plaid.Institution, error) {
	if f.institution == nil {
		return nil, &plaid.APIError{Endpoint: "/institutions/get_by_id", ErrorCode: "INSTITUTION_NOT_FOUND"}
	}
	return f.institution, nil
}

func (f *fakeVendor) RemoveItem(_ context.Context, accessToken string) error {
	f.removed = append(f.removed, accessToken)
	return nil
}

func (f *fakeVendor) SyncTransactions(_ context.Context, _, _ string) (*plaid.SyncResponse, error) {
	f.syncCalls++
	if f.syncCalls > len(f.syncPages) {
		return &plaid.SyncResponse{HasMore: false}, nil
	}
	page := f.syncPages[f.syncCalls-1]
	return &page, nil
}

func defaultFakeVendor() *fakeVendor {
	return &fakeVendor{
		linkToken:   "link-sandbox-token",
		accessToken: "access-sandbox-token",
		itemID:      "item-test-1",
		institution: &plaid.Institution{InstitutionID: "ins_1", Name: "First Bank"},
		balances: &plaid.BalancesResponse{
			Accounts: []plaid.BalanceAccount{{
				AccountID: "acct-test-1",
				Name:      "Checking",
				Type:      "depository",
				Subtype:   "checking",
				Balances:  plaid.Balances{Current: decimal.RequireFromString("100.00"), ISOCurrency: "USD"},
			}},
			Item: plaid.ItemInfo{ItemID: "item-test-1", InstitutionID: "ins_1"},
		},
	}
}

// recordingMailer captures outgoing reset mail for assertions.
type recordingMailer struct {
	to       string
	resetURL string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, _, resetURL string) error {
	m.to = to
	m.resetURL = resetURL
	return nil
}

type testEnv struct {
	app    *fiber.App
	srv    *Server
	db     *gorm.DB
	vendor *fakeVendor
	mailer *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		Env:           "test",
		JWTSecret:     "test-secret-key-for-handler-tests",
		FrontendURL:   "http://localhost:5173",
		PlaidEnv:      "sandbox",
		PlaidClientID: "client",
		PlaidSecret:   "secret",
	}

	vendor := defaultFakeVendor()
	m := &recordingMailer{}

	srv, err := NewServerWithDeps(cfg, db, rdb, vendor, m)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{app: app, srv: srv, db: db, vendor: vendor, mailer: m}
}

// createUser inserts a user with the shared test password and returns a token.
func (e *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hashed)}
	require.NoError(t, e.db.Create(user).Error)
	require.NoError(t, e.db.Create(&models.Group{UserID: user.ID, Name: models.DefaultGroupName}).Error)

	token, err := e.srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}
