package service

import (
	"sort"    // Contributor ordering
	"strconv" // Fallback user names
	"time"    // Contribution timestamps

	"wishlist_system/internal/domain" // Importing domain models
)

// ReservedBy identifies the user who reserved a gift
type ReservedBy struct {
	ID   uint   `json:"id"`   // Reserving user id
	Name string `json:"name"` // Reserving user display name
}

// ContributorView is one contribution as shown to non-owner viewers
type ContributorView struct {
	ID        uint      `json:"id"`         // Contribution id
	UserID    uint      `json:"user_id"`    // Contributing user id
	UserName  string    `json:"user_name"`  // Contributing user display name
	Amount    float64   `json:"amount"`     // Contributed amount
	CreatedAt time.Time `json:"created_at"` // Contribution timestamp
}

// GiftView is a gift joined with its funding state, filtered for a viewer.
// Owners never see who reserved or contributed, nor that anyone did:
// the surprise must be preserved.
type GiftView struct {
	ID               uint              `json:"id"`                // Gift id
	Title            string            `json:"title"`             // Gift title
	Price            float64           `json:"price"`             // Funding goal, 0 when unset
	URL              *string           `json:"url"`               // Optional product URL
	ImageURL         *string           `json:"image_url"`         // Optional image URL
	IsReserved       bool              `json:"is_reserved"`       // Funding-complete flag
	Collected        float64           `json:"collected"`         // Sum of contributions
	Progress         int               `json:"progress"`          // Percent toward the goal
	ReservedBy       *ReservedBy       `json:"reserved_by"`       // Reserver, nil for owners
	Contributors     []ContributorView `json:"contributors"`      // Contributor list, empty for owners
	HasContributions bool              `json:"has_contributions"` // Always false for owners
}

// userName resolves a display name with the same fallback the rest of the
// system uses for dangling user references
func userName(names map[uint]string, id uint) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "User " + strconv.FormatUint(uint64(id), 10)
}

// buildGiftView assembles the view of one gift for a viewer. The filter runs
// per request and is never cached: owner-relative visibility cannot be
// precomputed once for all viewers.
func buildGiftView(
	gift domain.Gift,
	reservation *domain.Reservation,
	contributions []domain.Contribution,
	names map[uint]string,
	isOwner bool,
) GiftView {
	collected := 0.0
	for _, c := range contributions {
		collected += c.Amount
	}
	goal := 0.0
	if gift.Price != nil {
		goal = *gift.Price
	}
	view := GiftView{
		ID:           gift.ID,
		Title:        gift.Title,
		Price:        goal,
		URL:          gift.URL,
		ImageURL:     gift.ImageURL,
		IsReserved:   gift.IsReserved,
		Collected:    collected,
		Progress:     progressPercent(collected, goal),
		Contributors: []ContributorView{}, // Empty list, never null, in JSON
	}
	if isOwner {
		// Owners get no reservation identity, no contributor list, and
		// has_contributions forced to false
		return view
	}
	if reservation != nil {
		view.ReservedBy = &ReservedBy{ID: reservation.UserID, Name: userName(names, reservation.UserID)}
	}
	for _, c := range contributions {
		view.Contributors = append(view.Contributors, ContributorView{
			ID:        c.ID,
			UserID:    c.UserID,
			UserName:  userName(names, c.UserID),
			Amount:    c.Amount,
			CreatedAt: c.CreatedAt,
		})
	}
	// Newest first
	sort.Slice(view.Contributors, func(i, j int) bool {
		return view.Contributors[i].CreatedAt.After(view.Contributors[j].CreatedAt)
	})
	view.HasContributions = len(view.Contributors) > 0
	return view
}

// ListGifts returns every gift of a wishlist joined with its funding summary
// and passed through the visibility filter for the given viewer (nil viewer
// means an anonymous visitor). Contributions, reservations and user names are
// each fetched in a single query rather than per gift.
func (d *Directory) ListGifts(wishlistID uint, viewerID *uint) ([]GiftView, error) {
	wishlist, err := d.GetWishlist(wishlistID)
	if err != nil {
		return nil, err
	}
	isOwner := viewerID != nil && wishlist.OwnerID == *viewerID

	var gifts []domain.Gift
	if err := d.db.Where("wishlist_id = ?", wishlistID).Order("id").Find(&gifts).Error; err != nil {
		return nil, err
	}
	giftIDs := make([]uint, 0, len(gifts))
	for _, g := range gifts {
		giftIDs = append(giftIDs, g.ID)
	}

	contributionsByGift := make(map[uint][]domain.Contribution)
	reservationByGift := make(map[uint]*domain.Reservation)
	userIDs := make(map[uint]bool)
	if len(giftIDs) > 0 {
		var contributions []domain.Contribution
		if err := d.db.Where("gift_id IN ?", giftIDs).Find(&contributions).Error; err != nil {
			return nil, err
		}
		for _, c := range contributions {
			contributionsByGift[c.GiftID] = append(contributionsByGift[c.GiftID], c)
			userIDs[c.UserID] = true
		}
		var reservations []domain.Reservation
		if err := d.db.Where("gift_id IN ?", giftIDs).Find(&reservations).Error; err != nil {
			return nil, err
		}
		for i := range reservations {
			reservationByGift[reservations[i].GiftID] = &reservations[i]
			userIDs[reservations[i].UserID] = true
		}
	}

	names := make(map[uint]string)
	if len(userIDs) > 0 {
		ids := make([]uint, 0, len(userIDs))
		for id := range userIDs {
			ids = append(ids, id)
		}
		var users []domain.User
		if err := d.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	views := make([]GiftView, 0, len(gifts))
	for _, g := range gifts {
		views = append(views, buildGiftView(g, reservationByGift[g.ID], contributionsByGift[g.ID], names, isOwner))
	}
	return views, nil
}
