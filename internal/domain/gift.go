package domain

// Gift Model
type Gift struct {
	ID            uint           `gorm:"primaryKey" json:"id"`                                   // Primary key
	Title         string         `gorm:"size:255;not null" json:"title"`                         // Gift title
	URL           *string        `json:"url"`                                                    // Optional product URL
	Price         *float64       `gorm:"type:decimal(10,2)" json:"price"`                        // Optional price (funding goal)
	ImageURL      *string        `json:"image_url"`                                              // Optional image URL
	IsReserved    bool           `gorm:"not null;default:false" json:"is_reserved"`              // Cached funding-complete flag
	WishlistID    uint           `gorm:"not null;index" json:"wishlist_id"`                      // Foreign key to Wishlist
	Reservation   *Reservation   `gorm:"foreignKey:GiftID;constraint:OnDelete:CASCADE" json:"-"` // At most one reservation
	Contributions []Contribution `gorm:"foreignKey:GiftID;constraint:OnDelete:CASCADE" json:"-"` // Contribution ledger entries
}
