package api

import (
	"net/http" // HTTP status codes

	"wishlist_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// GetUserHandler returns the authenticated user's own profile.
// Requesting anyone else's profile is forbidden.
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
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
		if id != userID {
			// Profiles are private: only the subject may read their own
			c.JSON(http.StatusForbidden, gin.H{"error": "You may only request your own profile"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"created_at": user.RegisteredAt,
		})
	}
}
