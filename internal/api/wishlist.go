package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"wishlist_system/internal/domain"  // Importing domain models
	"wishlist_system/internal/service" // Directory operations
	"wishlist_system/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// CreateWishlistRequest holds the wishlist creation payload
type CreateWishlistRequest struct {
	Title       string  `json:"title" binding:"required"` // Title must be provided
	Description *string `json:"description"`              // Optional description
	EventDate   *string `json:"event_date"`               // Optional event date (YYYY-MM-DD)
}

// UpdateWishlistRequest holds a partial wishlist update; absent fields are untouched
type UpdateWishlistRequest struct {
	Title       *string `json:"title"`       // New title, if supplied
	Description *string `json:"description"` // New description, if supplied
	EventDate   *string `json:"event_date"`  // New event date, if supplied (YYYY-MM-DD)
}

// parseDate parses an optional YYYY-MM-DD date string
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(v), true
}

// CreateWishlistHandler creates a wishlist owned by the authenticated user
func CreateWishlistHandler(dir *service.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateWishlistRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		eventDate, err := parseDate(req.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event_date"})
			return
		}
		wishlist, err := dir.CreateWishlist(userID, service.WishlistInput{
			Title:       req.Title,
			Description: req.Description,
			EventDate:   eventDate,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, wishlist) // Return the created wishlist
	}
}

// ListWishlistsHandler returns the authenticated user's wishlists
func ListWishlistsHandler(dir *service.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		wishlists, err := dir.ListWishlists(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, wishlists) // Return the owner's wishlists
	}
}

// GetWishlistBySlugHandler returns a wishlist by its public slug, cached
func GetWishlistBySlugHandler(dir *service.Directory, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		ctx := context.Background()             // Context for Redis operations
		cacheKey := utils.WishlistSlugKey(slug) // Cache key for this slug
		var wishlist domain.Wishlist
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wishlist) // Try to get from cache
		if err == nil && found {
			c.JSON(http.StatusOK, wishlist) // Return cached wishlist
			return
		}
		result, err := dir.GetWishlistBySlug(slug)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, result, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, result)                                  // Return wishlist
	}
}

// UpdateWishlistHandler applies a partial update; owner only
func UpdateWishlistHandler(dir *service.Directory, rdb *redis.Client) gin.HandlerFunc {
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
		var req UpdateWishlistRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		eventDate, err := parseDate(req.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event_date"})
			return
		}
		wishlist, err := dir.UpdateWishlist(id, userID, service.WishlistUpdate{
			Title:       req.Title,
			Description: req.Description,
			EventDate:   eventDate,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Invalidate the cached copy for this slug
		_ = utils.DeleteCache(context.Background(), rdb, utils.WishlistSlugKey(wishlist.Slug))
		c.JSON(http.StatusOK, wishlist) // Return the updated wishlist
	}
}

// DeleteWishlistHandler removes a wishlist and its children; owner only
func DeleteWishlistHandler(dir *service.Directory, rdb *redis.Client) gin.HandlerFunc {
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
		// Fetch first so the slug cache can be invalidated after deletion
		wishlist, err := dir.GetWishlist(id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := dir.DeleteWishlist(id, userID); err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.WishlistSlugKey(wishlist.Slug))
		c.JSON(http.StatusOK, gin.H{"status": "deleted"}) // Return deletion status
	}
}

// ListGiftsHandler returns a wishlist's gifts through the visibility filter.
// Works for anonymous viewers; an authenticated owner gets the blinded view.
func ListGiftsHandler(dir *service.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var viewerID *uint // Anonymous unless optional auth resolved a user
		if userID, exists := currentUserID(c); exists {
			viewerID = &userID
		}
		views, err := dir.ListGifts(id, viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views) // Return filtered gift views
	}
}
