package db

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory database for one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return d
}
