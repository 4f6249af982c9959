// Package testutil provides shared test fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"

	"anex/internal/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory sqlite database with the full schema
// migrated. Each call gets its own database, so tests stay independent.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared-cache DSN keeps the database alive across pooled
	// connections for the duration of the test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
