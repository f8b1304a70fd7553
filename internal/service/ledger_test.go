package service

import (
	"sync"
	"testing"

	"wishlist_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveClaimsGiftOnce(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	guest := newTestUser(t, db, "guest@example.com", "Guest")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday", "birthday")
	gift := newTestGift(t, db, wishlist.ID, "Bike", ptr(100.0))

	result, err := ledger.Reserve(gift.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, gift.ID, result.Reservation.GiftID)
	assert.Equal(t, guest.ID, result.Reservation.UserID)
	assert.True(t, result.Gift.IsReserved)

	// The rejection is idempotent: every later attempt fails the same way
	other := newTestUser(t, db, "other@example.com", "Other")
	_, err = ledger.Reserve(gift.ID, other.ID)
	assert.ErrorIs(t, err, ErrAlreadyReserved)
	_, err = ledger.Reserve(gift.ID, other.ID)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	var count int64
	require.NoError(t, db.Model(&domain.Reservation{}).Where("gift_id = ?", gift.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReserveUnknownGift(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	user := newTestUser(t, db, "guest@example.com", "Guest")

	_, err := ledger.Reserve(12345, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReserveBlockedByContributions(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	guest := newTestUser(t, db, "guest@example.com", "Guest")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday", "birthday")
	gift := newTestGift(t, db, wishlist.ID, "Bike", ptr(100.0))

	_, err := ledger.Contribute(gift.ID, guest.ID, 10)
	require.NoError(t, err)

	_, err = ledger.Reserve(gift.ID, guest.ID)
	assert.ErrorIs(t, err, ErrContributionsExist)

	// The failed reserve rolled back without side effects
	var fresh domain.Gift
	require.NoError(t, db.First(&fresh, gift.ID).Error)
	assert.False(t, fresh.IsReserved)
	var count int64
	require.NoError(t, db.Model(&domain.Reservation{}).Where("gift_id = ?", gift.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestConcurrentReserveHasOneWinner(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday", "birthday")
	gift := newTestGift(t, db, wishlist.ID, "Bike", ptr(100.0))

	const attempts = 8
	users := make([]domain.User, attempts)
	for i := range users {
		users[i] = newTestUser(t, db, string(rune('a'+i))+"@example.com", "Guest")
	}

	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Reserve(gift.ID, users[i].ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyReserved)
		}
	}
	assert.Equal(t, 1, winners)

	var count int64
	require.NoError(t, db.Model(&domain.Reservation{}).Where("gift_id = ?", gift.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestContributeReachesGoalExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	guest := newTestUser(t, db, "guest@example.com", "Guest")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday Party", "birthday-party")
	gift := newTestGift(t, db, wishlist.ID, "Bike", ptr(100.0))

	first, err := ledger.Contribute(gift.ID, guest.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, 60.0, first.Collected)
	assert.False(t, first.IsReserved)

	second, err := ledger.Contribute(gift.ID, guest.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 100.0, second.Collected)
	assert.True(t, second.IsReserved)

	// Once complete, neither path accepts the gift again
	third := newTestUser(t, db, "third@example.com", "Third")
	_, err = ledger.Contribute(gift.ID, third.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyReserved)
	_, err = ledger.Reserve(gift.ID, third.ID)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	// The flip never reverts
	var fresh domain.Gift
	require.NoError(t, db.First(&fresh, gift.ID).Error)
	assert.True(t, fresh.IsReserved)
}

func TestContributeValidation(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	guest := newTestUser(t, db, "guest@example.com", "Guest")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday", "birthday")
	gift := newTestGift(t, db, wishlist.ID, "Bike", ptr(100.0))

	_, err := ledger.Contribute(gift.ID, guest.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ledger.Contribute(gift.ID, guest.ID, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ledger.Contribute(99999, guest.ID, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	// A failed contribute leaves the ledger exactly as before
	var count int64
	require.NoError(t, db.Model(&domain.Contribution{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestContributeWithoutGoalNeverCompletes(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	guest := newTestUser(t, db, "guest@example.com", "Guest")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday", "birthday")
	gift := newTestGift(t, db, wishlist.ID, "Mystery", nil)

	result, err := ledger.Contribute(gift.ID, guest.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, result.Collected)
	assert.False(t, result.IsReserved)

	summary, err := ledger.Summary(gift.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, summary.Collected)
	assert.Equal(t, 0.0, summary.Goal)
	assert.Equal(t, 0, summary.Progress) // No goal means no percentage, never a division by zero
}

func TestSummaryProgress(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	owner := newTestUser(t, db, "owner@example.com", "Owner")
	guest := newTestUser(t, db, "guest@example.com", "Guest")
	wishlist := newTestWishlist(t, db, owner.ID, "Birthday", "birthday")
	gift := newTestGift(t, db, wishlist.ID, "Bike", ptr(150.0))

	_, err := ledger.Contribute(gift.ID, guest.ID, 50)
	require.NoError(t, err)

	summary, err := ledger.Summary(gift.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, summary.Collected)
	assert.Equal(t, 150.0, summary.Goal)
	assert.Equal(t, 33, summary.Progress) // Truncated, not rounded

	_, err = ledger.Summary(4242)
	assert.ErrorIs(t, err, ErrNotFound)
}
