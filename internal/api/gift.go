package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Fallback user names
	"time"     // Log timestamps

	"wishlist_system/internal/domain"  // Importing domain models
	"wishlist_system/internal/service" // Ledger and directory operations
	"wishlist_system/internal/utils"   // Utility functions
	"wishlist_system/internal/ws"      // Live-update fan-out

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateGiftRequest holds the gift creation payload
type CreateGiftRequest struct {
	Title      string   `json:"title" binding:"required"`       // Title must be provided
	WishlistID uint     `json:"wishlist_id" binding:"required"` // Parent wishlist must be provided
	Price      *float64 `json:"price" binding:"omitempty,gte=0"` // Optional non-negative price
	URL        *string  `json:"url"`                            // Optional product URL
	ImageURL   *string  `json:"image_url"`                      // Optional image URL
}

// UpdateGiftRequest holds a partial gift update; absent fields are untouched
type UpdateGiftRequest struct {
	Title    *string  `json:"title"`                          // New title, if supplied
	Price    *float64 `json:"price" binding:"omitempty,gte=0"` // New price, if supplied
	URL      *string  `json:"url"`                            // New URL, if supplied
	ImageURL *string  `json:"image_url"`                      // New image URL, if supplied
}

// ContributeRequest holds the contribution payload
type ContributeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Contribution amount
}

// lookupUserName resolves a display name for broadcast payloads
func lookupUserName(db *gorm.DB, userID uint) string {
	var user domain.User
	if err := db.First(&user, userID).Error; err != nil {
		return "User " + strconv.FormatUint(uint64(userID), 10)
	}
	return user.Name
}

// giftEventPayload is the gift body carried by gift_added events
func giftEventPayload(gift *domain.Gift) gin.H {
	price := 0.0
	if gift.Price != nil {
		price = *gift.Price
	}
	return gin.H{
		"id":          gift.ID,
		"title":       gift.Title,
		"price":       price,
		"url":         gift.URL,
		"image_url":   gift.ImageURL,
		"is_reserved": gift.IsReserved,
		"collected":   0,
		"progress":    0,
	}
}

// CreateGiftHandler adds a gift to a wishlist and announces it to viewers
func CreateGiftHandler(dir *service.Directory, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateGiftRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		gift, err := dir.CreateGift(userID, service.GiftInput{
			WishlistID: req.WishlistID,
			Title:      req.Title,
			URL:        req.URL,
			Price:      req.Price,
			ImageURL:   req.ImageURL,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// The mutation is committed; announce it to the wishlist's viewers
		hub.BroadcastToWishlist(gift.WishlistID, ws.GiftAddedEvent(gift.ID, giftEventPayload(gift)))
		c.JSON(http.StatusCreated, gin.H{
			"id":          gift.ID,
			"title":       gift.Title,
			"price":       gift.Price,
			"url":         gift.URL,
			"image_url":   gift.ImageURL,
			"wishlist_id": gift.WishlistID,
			"is_reserved": gift.IsReserved,
			"collected":   0,
			"progress":    0,
		})
	}
}

// UpdateGiftHandler applies a partial update; wishlist owner only
func UpdateGiftHandler(dir *service.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateGiftRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		gift, err := dir.UpdateGift(id, userID, service.GiftUpdate{
			Title:    req.Title,
			URL:      req.URL,
			Price:    req.Price,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gift) // Return the updated gift
	}
}

// DeleteGiftHandler removes a gift with its funding records; wishlist owner only
func DeleteGiftHandler(dir *service.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		if err := dir.DeleteGift(id, userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"}) // Return deletion status
	}
}

// ReserveGiftHandler claims an entire gift for the authenticated user
func ReserveGiftHandler(db *gorm.DB, ledger *service.Ledger, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		result, err := ledger.Reserve(id, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		// Log the successful reservation
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"gift_id":   id,
			"type":      "reserve",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Gift reserved")
		// The mutation is committed; announce exactly one winner
		userName := lookupUserName(db, userID)
		hub.BroadcastToWishlist(result.Gift.WishlistID,
			ws.ItemReservedEvent(id, userID, userName, result.Gift.WishlistID))
		c.JSON(http.StatusOK, gin.H{"message": "Gift reserved"})
	}
}

// ContributeHandler appends a contribution and fans out the funding change
func ContributeHandler(db *gorm.DB, ledger *service.Ledger, hub *ws.Hub, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req ContributeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		result, err := ledger.Contribute(id, userID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		// Log the successful contribution
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"gift_id":   id,
			"amount":    req.Amount,
			"total":     result.Collected,
			"type":      "contribute",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Contribution added")
		// The mutation is committed; fan out to the wishlist and the landing page
		userName := lookupUserName(db, userID)
		hub.BroadcastToWishlist(result.Gift.WishlistID,
			ws.ContributionAddedEvent(id, req.Amount, result.Collected, userID, userName))
		hub.BroadcastToLanding(ws.StatsUpdatedEvent())
		// The global tally changed; invalidate the landing stats cache
		_ = utils.DeleteCache(context.Background(), rdb, utils.StatsCacheKey)
		c.JSON(http.StatusOK, gin.H{
			"message":     "Contribution added",
			"collected":   result.Collected,
			"goal":        result.Gift.Price,
			"is_reserved": result.IsReserved,
		})
	}
}
