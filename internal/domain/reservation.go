package domain

import "time"

// Reservation Model
// The unique index on GiftID enforces the single-winner rule for reservations.
type Reservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`               // Primary key
	GiftID    uint      `gorm:"uniqueIndex;not null" json:"gift_id"` // Foreign key to Gift (one reservation per gift)
	UserID    uint      `gorm:"not null" json:"user_id"`            // Foreign key to the reserving User
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`   // Reservation timestamp
}
