// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostLength is the maximum number of characters allowed in a post body.
const MaxPostLength = 140

// Post represents a short-form post authored by a user.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Body      string         `gorm:"size:140;not null" json:"body"`
	Language  string         `gorm:"size:5" json:"language"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
