// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGroupName is the spending group every new account lands in until the
// user files it somewhere else.
const DefaultGroupName = "Uncategorized"

// Group is a user-defined bucket of accounts for spending views.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a single linked institution connection at the vendor. It holds the
// durable access token and the transaction-stream cursor. IDs are the vendor's
// opaque identifiers, not locally generated.
type Item struct {
	ID          string    `gorm:"primaryKey;size:60" json:"id"`
	AccessToken string    `gorm:"size:60;not null" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	InsID       string    `gorm:"size:24" json:"ins_id"`
	InsName     string    `gorm:"size:120" json:"ins_name"`
	Cursor      string    `gorm:"size:256" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Accounts []Account `gorm:"foreignKey:ItemID" json:"accounts,omitempty"`
}

// Account is a single account under a linked item.
type Account struct {
	ID             string          `gorm:"primaryKey;size:60" json:"id"`
	Name           string          `gorm:"size:128;index" json:"name"`
	ItemID         string          `gorm:"size:60;not null;index" json:"item_id"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(19,4)" json:"current_balance"`
	Type           string          `gorm:"size:20" json:"type"`
	GroupID        uint            `gorm:"index" json:"group_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
