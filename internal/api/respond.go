package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes

	"wishlist_system/internal/service" // Service error taxonomy

	"github.com/gin-gonic/gin" // Gin web framework
)

// respondError maps a service error to an HTTP status at the boundary.
// This is the only place error tags and status codes meet.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may do this"})
	case errors.Is(err, service.ErrAlreadyReserved):
		c.JSON(http.StatusConflict, gin.H{"error": "Gift is already reserved"})
	case errors.Is(err, service.ErrContributionsExist):
		c.JSON(http.StatusConflict, gin.H{"error": "Gift already has contributions"})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID reads the authenticated user id set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
