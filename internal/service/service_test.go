package service

import (
	"testing"

	"wishlist_system/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
// A single connection keeps sqlite's write serialization deterministic.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Wishlist{},
		&domain.Gift{},
		&domain.Reservation{},
		&domain.Contribution{},
	))
	return db
}

// newTestUser inserts a user and returns it
func newTestUser(t *testing.T, db *gorm.DB, email, name string) domain.User {
	t.Helper()
	user := domain.User{Email: email, Name: name, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// newTestWishlist inserts a wishlist for an owner and returns it
func newTestWishlist(t *testing.T, db *gorm.DB, ownerID uint, title, slug string) domain.Wishlist {
	t.Helper()
	wishlist := domain.Wishlist{Title: title, Slug: slug, OwnerID: ownerID}
	require.NoError(t, db.Create(&wishlist).Error)
	return wishlist
}

// newTestGift inserts a gift and returns it; price may be nil
func newTestGift(t *testing.T, db *gorm.DB, wishlistID uint, title string, price *float64) domain.Gift {
	t.Helper()
	gift := domain.Gift{Title: title, Price: price, WishlistID: wishlistID}
	require.NoError(t, db.Create(&gift).Error)
	return gift
}

// ptr returns a pointer to its argument
func ptr[T any](v T) *T {
	return &v
}
