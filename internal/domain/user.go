package domain

import "time"

// User Model
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                                    // Primary key
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`              // Unique email address
	Password     string     `gorm:"not null" json:"-"`                                       // Hashed password (never serialized)
	Name         string     `gorm:"size:255;not null" json:"name"`                           // Display name
	RegisteredAt time.Time  `gorm:"autoCreateTime" json:"registered_at"`                     // Registration timestamp
	Wishlists    []Wishlist `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"` // Owned wishlists
}
