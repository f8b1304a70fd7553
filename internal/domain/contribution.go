package domain

import "time"

// Contribution Model (append-only ledger entry)
type Contribution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                     // Primary key
	GiftID    uint      `gorm:"not null;index" json:"gift_id"`            // Foreign key to Gift
	UserID    uint      `gorm:"not null" json:"user_id"`                  // Foreign key to the contributing User
	Amount    float64   `gorm:"type:decimal(10,2);not null" json:"amount"` // Contributed amount
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`         // Contribution timestamp
}
