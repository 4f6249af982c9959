// Package models contains data structures for the application's domain models.
package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `gorm:"size:140" json:"bio"`
	LastSeen  *time.Time     `json:"last_seen,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Items     []Item         `gorm:"foreignKey:UserID" json:"items,omitempty"`
}

// AvatarURL returns a gravatar identicon URL for the user's email.
func (u *User) AvatarURL(size int) string {
	digest := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d",
		hex.EncodeToString(digest[:]), size)
}
