package ws

// Event is one JSON frame pushed to subscribed viewers. Every frame carries
// a "type" discriminator; clients never receive errors, only state changes.
type Event map[string]any

// ConnectedEvent acknowledges a wishlist subscription
func ConnectedEvent(wishlistID uint) Event {
	return Event{
		"type":        "connected",
		"wishlist_id": wishlistID,
		"message":     "WebSocket connected",
	}
}

// LandingConnectedEvent acknowledges a landing subscription
func LandingConnectedEvent() Event {
	return Event{
		"type":    "connected",
		"message": "Landing stats",
	}
}

// GiftAddedEvent announces a new gift to the wishlist's viewers
func GiftAddedEvent(giftID uint, gift any) Event {
	return Event{
		"type":    "gift_added",
		"gift_id": giftID,
		"gift":    gift,
	}
}

// ItemReservedEvent announces a successful reservation to the wishlist's viewers
func ItemReservedEvent(giftID, userID uint, userName string, wishlistID uint) Event {
	return Event{
		"type":        "item_reserved",
		"gift_id":     giftID,
		"user_id":     userID,
		"user_name":   userName,
		"wishlist_id": wishlistID,
	}
}

// ContributionAddedEvent announces a new contribution and the running total
func ContributionAddedEvent(giftID uint, amount, total float64, userID uint, userName string) Event {
	return Event{
		"type":      "contribution_added",
		"gift_id":   giftID,
		"amount":    amount,
		"total":     total,
		"user_id":   userID,
		"user_name": userName,
	}
}

// StatsUpdatedEvent signals landing viewers to refetch the global tally
func StatsUpdatedEvent() Event {
	return Event{"type": "stats_updated"}
}
