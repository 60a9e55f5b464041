// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"canteen-backend/internal/database"
	"canteen-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Now is the fixed wall clock used by workflow tests.
var Now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func Clock() time.Time { return Now }

// NewDB returns a migrated in-memory sqlite store private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole, balance float64) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: role, Balance: balance}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateItem(t *testing.T, db *gorm.DB, item models.MenuItem) *models.MenuItem {
	t.Helper()
	if item.Date.IsZero() {
		item.Date = Now.Truncate(24 * time.Hour)
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func Reload[T any](t *testing.T, db *gorm.DB, id uint) T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, id).Error)
	return v
}

func Count[T any](t *testing.T, db *gorm.DB, query any, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(new(T))
	if query != nil {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
