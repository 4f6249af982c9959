// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single synced vendor transaction. OriginalName is the label
// as the vendor reported it; NewName is a user-assigned rename that is carried
// forward onto future transactions with the same original label.
type Transaction struct {
	ID             string          `gorm:"primaryKey;size:60" json:"id"`
	OriginalName   string          `gorm:"size:140;index" json:"original_name"`
	NewName        *string         `gorm:"size:140" json:"new_name,omitempty"`
	AccountID      string          `gorm:"size:60;not null;index" json:"account_id"`
	Date           *time.Time      `json:"date,omitempty"`
	VendorName     string          `gorm:"size:140" json:"vendor_name"`
	VendorType     string          `gorm:"size:32" json:"vendor_type"`
	Amount         decimal.Decimal `gorm:"type:decimal(19,4)" json:"amount"`
	ISOCurrency    string          `gorm:"size:10" json:"iso_currency_code"`
	PaymentChannel string          `gorm:"size:20" json:"payment_channel"`
	CategoryName   string          `gorm:"size:128" json:"category_name"`
	CategoryID     string          `gorm:"size:24" json:"category_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DisplayName returns the user-facing label: the rename when present,
// otherwise the vendor's original label.
func (t *Transaction) DisplayName() string {
	if t.NewName != nil && *t.NewName != "" {
		return *t.NewName
	}
	return t.OriginalName
}
