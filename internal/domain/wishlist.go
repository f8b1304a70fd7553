package domain

import "time"

// Wishlist Model
type Wishlist struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                                       // Primary key
	Title       string     `gorm:"size:255;not null" json:"title"`                             // Wishlist title
	Description *string    `json:"description"`                                                // Optional description
	EventDate   *time.Time `gorm:"type:date" json:"event_date"`                                // Optional event date
	Slug        string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`                  // Globally unique URL slug
	OwnerID     uint       `gorm:"not null;index" json:"owner_id"`                             // Foreign key to User
	Gifts       []Gift     `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"-"` // Child gifts
}
