package service

import (
	"errors" // Sentinel error matching

	"wishlist_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Ledger owns the reservation record and the append-only contribution log.
// Every mutation runs as one transaction per gift; the unique index on
// reservations.gift_id is the final arbiter if two reservations race.
type Ledger struct {
	db *gorm.DB // Database handle
}

// NewLedger creates a Ledger backed by the given database
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// ReserveResult carries the created reservation and the gift it claimed
type ReserveResult struct {
	Reservation domain.Reservation // The winning reservation
	Gift        domain.Gift        // The reserved gift
}

// ContributeResult carries the appended ledger entry and the new funding state
type ContributeResult struct {
	Entry      domain.Contribution // The appended contribution
	Gift       domain.Gift         // The gift contributed to
	Collected  float64             // Running total after the append
	IsReserved bool                // True once the goal has been reached
}

// FundingSummary reports how far a gift's funding has progressed
type FundingSummary struct {
	Collected float64 `json:"collected"` // Sum of contributions
	Goal      float64 `json:"goal"`      // Gift price, 0 when unset
	Progress  int     `json:"progress"`  // floor(100 * collected / goal), 0 when no goal
}

// progressPercent computes floor(100 * collected / goal) without dividing by zero
func progressPercent(collected, goal float64) int {
	if goal <= 0 {
		return 0
	}
	return int(collected / goal * 100)
}

// Reserve claims an entire gift for a user. Fails with ErrNotFound when the
// gift is unknown, ErrAlreadyReserved when it has been reserved or fully
// funded, and ErrContributionsExist once anyone has contributed to it.
func (l *Ledger) Reserve(giftID, userID uint) (*ReserveResult, error) {
	var result ReserveResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var gift domain.Gift // Load the gift
		if err := tx.First(&gift, giftID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound // Gift does not exist
			}
			return err
		}
		// Conditional flip: whoever loses this update lost the race
		flip := tx.Model(&domain.Gift{}).
			Where("id = ? AND is_reserved = ?", giftID, false).
			Update("is_reserved", true)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return ErrAlreadyReserved // Already reserved or fully funded
		}
		// Reservation is blocked once any contribution exists; the rollback undoes the flip
		var count int64
		if err := tx.Model(&domain.Contribution{}).Where("gift_id = ?", giftID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrContributionsExist
		}
		reservation := domain.Reservation{GiftID: giftID, UserID: userID}
		if err := tx.Create(&reservation).Error; err != nil {
			// Unique index on gift_id: a concurrent winner already inserted
			return ErrAlreadyReserved
		}
		gift.IsReserved = true
		result = ReserveResult{Reservation: reservation, Gift: gift}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Contribute appends a ledger entry for a gift and flips is_reserved once the
// running total reaches the price. The flip is monotonic: it never reverts.
func (l *Ledger) Contribute(giftID, userID uint, amount float64) (*ContributeResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount // Validation happens before any write
	}
	var result ContributeResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var gift domain.Gift // Load the gift
		if err := tx.First(&gift, giftID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound // Gift does not exist
			}
			return err
		}
		// A reserved (or fully funded) gift accepts no further contributions
		if gift.IsReserved {
			return ErrAlreadyReserved
		}
		entry := domain.Contribution{GiftID: giftID, UserID: userID, Amount: amount}
		if err := tx.Create(&entry).Error; err != nil {
			return err // Rollback leaves the ledger untouched
		}
		// Recompute the running total inside the same transaction that may flip the flag
		var total float64
		if err := tx.Model(&domain.Contribution{}).
			Where("gift_id = ?", giftID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		completed := false
		if gift.Price != nil && total >= *gift.Price {
			// Conditional update keeps the completion flip one-way and exactly-once
			flip := tx.Model(&domain.Gift{}).
				Where("id = ? AND is_reserved = ?", giftID, false).
				Update("is_reserved", true)
			if flip.Error != nil {
				return flip.Error
			}
			completed = true
		}
		result = ContributeResult{Entry: entry, Gift: gift, Collected: total, IsReserved: completed}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Summary returns the funding summary for a single gift
func (l *Ledger) Summary(giftID uint) (*FundingSummary, error) {
	var gift domain.Gift
	if err := l.db.First(&gift, giftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var collected float64
	if err := l.db.Model(&domain.Contribution{}).
		Where("gift_id = ?", giftID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&collected).Error; err != nil {
		return nil, err
	}
	goal := 0.0
	if gift.Price != nil {
		goal = *gift.Price
	}
	return &FundingSummary{
		Collected: collected,
		Goal:      goal,
		Progress:  progressPercent(collected, goal),
	}, nil
}
