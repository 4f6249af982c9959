package plaid

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// APIError is a structured error returned by the vendor API.
type APIError struct {
	StatusCode     int    `json:"-"`
	Endpoint       string `json:"-"`
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid %s: %s %s (%s)", e.Endpoint, e.ErrorType, e.ErrorCode, e.ErrorMessage)
}

// LinkTokenResponse is the result of /link/token/create.
type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// ExchangeResponse is the result of /item/public_token/exchange.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// Balances holds the balance block of an account.
type Balances struct {
	Current        decimal.Decimal `json:"current"`
	Available      decimal.Decimal `json:"available"`
	ISOCurrency    string          `json:"iso_currency_code"`
	CreditLimit    decimal.Decimal `json:"limit"`
	LastUpdatedRaw string          `json:"last_updated_datetime"`
}

// BalanceAccount is one account entry from /accounts/balance/get.
type BalanceAccount struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Mask      string   `json:"mask"`
	Type      string   `json:"type"`
	Subtype   string   `json:"subtype"`
	Balances  Balances `json:"balances"`
}

// ItemInfo is the item block included in balance responses.
type ItemInfo struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

// BalancesResponse is the result of /accounts/balance/get.
type BalancesResponse struct {
	Accounts  []BalanceAccount `json:"accounts"`
	Item      ItemInfo         `json:"item"`
	RequestID string           `json:"request_id"`
}

// Institution is the metadata block from /institutions/get_by_id.
type Institution struct {
	InstitutionID string   `json:"institution_id"`
	Name          string   `json:"name"`
	CountryCodes  []string `json:"country_codes"`
}

type institutionResponse struct {
	Institution Institution `json:"institution"`
	RequestID   string      `json:"request_id"`
}

// SyncTransaction is one added or modified entry in the change stream.
type SyncTransaction struct {
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	MerchantName   string          `json:"merchant_name"`
	Amount         decimal.Decimal `json:"amount"`
	ISOCurrency    string          `json:"iso_currency_code"`
	Date           string          `json:"date"`
	PaymentChannel string          `json:"payment_channel"`
	Category       []string        `json:"category"`
	CategoryID     string          `json:"category_id"`
	TransactionType string         `json:"transaction_type"`
}

// ParsedDate returns the transaction date, or nil when absent or malformed.
func (t *SyncTransaction) ParsedDate() *time.Time {
	if t.Date == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return nil
	}
	return &parsed
}

// PrimaryCategory returns the first category label, if any.
func (t *SyncTransaction) PrimaryCategory() string {
	if len(t.Category) == 0 {
		return ""
	}
	return t.Category[0]
}

// RemovedTransaction is one removed entry in the change stream.
type RemovedTransaction struct {
	TransactionID string `json:"transaction_id"`
}

// SyncResponse is one page of /transactions/sync.
type SyncResponse struct {
	Added      []SyncTransaction    `json:"added"`
	Modified   []SyncTransaction    `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	NextCursor string               `json:"next_cursor"`
	HasMore    bool                 `json:"has_more"`
	RequestID  string               `json:"request_id"`
}
