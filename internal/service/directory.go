package service

import (
	"errors" // Sentinel error matching
	"time"   // Event dates

	"wishlist_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Directory provides ownership-scoped CRUD over wishlists and gifts.
// All mutations check caller == owner and fail with ErrForbidden otherwise.
type Directory struct {
	db *gorm.DB // Database handle
}

// NewDirectory creates a Directory backed by the given database
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// WishlistInput holds the fields for creating a wishlist
type WishlistInput struct {
	Title       string     // Wishlist title (slug source)
	Description *string    // Optional description
	EventDate   *time.Time // Optional event date
}

// WishlistUpdate holds optional fields for a partial wishlist update;
// nil fields are left untouched
type WishlistUpdate struct {
	Title       *string    // New title, if supplied
	Description *string    // New description, if supplied
	EventDate   *time.Time // New event date, if supplied
}

// GiftInput holds the fields for creating a gift
type GiftInput struct {
	WishlistID uint     // Parent wishlist
	Title      string   // Gift title
	URL        *string  // Optional product URL
	Price      *float64 // Optional price (funding goal)
	ImageURL   *string  // Optional image URL
}

// GiftUpdate holds optional fields for a partial gift update;
// nil fields are left untouched
type GiftUpdate struct {
	Title    *string  // New title, if supplied
	URL      *string  // New URL, if supplied
	Price    *float64 // New price, if supplied
	ImageURL *string  // New image URL, if supplied
}

// CreateWishlist creates a wishlist for its owner with a unique slug
func (d *Directory) CreateWishlist(ownerID uint, in WishlistInput) (*domain.Wishlist, error) {
	slug, err := generateUniqueSlug(d.db, in.Title)
	if err != nil {
		return nil, err
	}
	wishlist := domain.Wishlist{
		Title:       in.Title,
		Description: in.Description,
		EventDate:   in.EventDate,
		Slug:        slug,
		OwnerID:     ownerID,
	}
	if err := d.db.Create(&wishlist).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// ListWishlists returns all wishlists owned by a user
func (d *Directory) ListWishlists(ownerID uint) ([]domain.Wishlist, error) {
	var wishlists []domain.Wishlist
	if err := d.db.Where("owner_id = ?", ownerID).Find(&wishlists).Error; err != nil {
		return nil, err
	}
	return wishlists, nil
}

// GetWishlistBySlug returns the wishlist with the given slug
func (d *Directory) GetWishlistBySlug(slug string) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	if err := d.db.Where("slug = ?", slug).First(&wishlist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wishlist, nil
}

// GetWishlist returns the wishlist with the given id
func (d *Directory) GetWishlist(id uint) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	if err := d.db.First(&wishlist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wishlist, nil
}

// UpdateWishlist applies a partial update; only the owner may mutate
func (d *Directory) UpdateWishlist(id, callerID uint, upd WishlistUpdate) (*domain.Wishlist, error) {
	wishlist, err := d.GetWishlist(id)
	if err != nil {
		return nil, err
	}
	if wishlist.OwnerID != callerID {
		return nil, ErrForbidden
	}
	// Apply only the fields that were explicitly supplied
	if upd.Title != nil {
		wishlist.Title = *upd.Title
	}
	if upd.Description != nil {
		wishlist.Description = upd.Description
	}
	if upd.EventDate != nil {
		wishlist.EventDate = upd.EventDate
	}
	if err := d.db.Save(wishlist).Error; err != nil {
		return nil, err
	}
	return wishlist, nil
}

// DeleteWishlist removes a wishlist together with its gifts and their
// reservations and contributions, as one transaction
func (d *Directory) DeleteWishlist(id, callerID uint) error {
	wishlist, err := d.GetWishlist(id)
	if err != nil {
		return err
	}
	if wishlist.OwnerID != callerID {
		return ErrForbidden
	}
	return d.db.Transaction(func(tx *gorm.DB) error {
		var giftIDs []uint
		if err := tx.Model(&domain.Gift{}).Where("wishlist_id = ?", id).Pluck("id", &giftIDs).Error; err != nil {
			return err
		}
		if len(giftIDs) > 0 {
			if err := tx.Where("gift_id IN ?", giftIDs).Delete(&domain.Contribution{}).Error; err != nil {
				return err
			}
			if err := tx.Where("gift_id IN ?", giftIDs).Delete(&domain.Reservation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("wishlist_id = ?", id).Delete(&domain.Gift{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.Wishlist{}, id).Error
	})
}

// CreateGift adds a gift to a wishlist; only the wishlist owner may add
func (d *Directory) CreateGift(callerID uint, in GiftInput) (*domain.Gift, error) {
	wishlist, err := d.GetWishlist(in.WishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.OwnerID != callerID {
		return nil, ErrForbidden
	}
	gift := domain.Gift{
		Title:      in.Title,
		URL:        in.URL,
		Price:      in.Price,
		ImageURL:   in.ImageURL,
		WishlistID: in.WishlistID,
		IsReserved: false,
	}
	if err := d.db.Create(&gift).Error; err != nil {
		return nil, err
	}
	return &gift, nil
}

// GetGift returns the gift with the given id
func (d *Directory) GetGift(id uint) (*domain.Gift, error) {
	var gift domain.Gift
	if err := d.db.First(&gift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &gift, nil
}

// UpdateGift applies a partial update; only the parent wishlist owner may mutate
func (d *Directory) UpdateGift(id, callerID uint, upd GiftUpdate) (*domain.Gift, error) {
	gift, err := d.GetGift(id)
	if err != nil {
		return nil, err
	}
	wishlist, err := d.GetWishlist(gift.WishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.OwnerID != callerID {
		return nil, ErrForbidden
	}
	// Apply only the fields that were explicitly supplied
	if upd.Title != nil {
		gift.Title = *upd.Title
	}
	if upd.URL != nil {
		gift.URL = upd.URL
	}
	if upd.Price != nil {
		gift.Price = upd.Price
	}
	if upd.ImageURL != nil {
		gift.ImageURL = upd.ImageURL
	}
	if err := d.db.Save(gift).Error; err != nil {
		return nil, err
	}
	return gift, nil
}

// DeleteGift removes a gift with its reservation and contributions,
// as one transaction; only the parent wishlist owner may delete
func (d *Directory) DeleteGift(id, callerID uint) error {
	gift, err := d.GetGift(id)
	if err != nil {
		return err
	}
	wishlist, err := d.GetWishlist(gift.WishlistID)
	if err != nil {
		return err
	}
	if wishlist.OwnerID != callerID {
		return ErrForbidden
	}
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gift_id = ?", id).Delete(&domain.Contribution{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gift_id = ?", id).Delete(&domain.Reservation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Gift{}, id).Error
	})
}
