package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Time durations

	"wishlist_system/internal/service" // Stats aggregation
	"wishlist_system/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// StatsHandler returns the landing-page aggregate, cached for 60 seconds.
// The cache is invalidated whenever a contribution lands.
func StatsHandler(stats *service.Stats, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var cached service.StatsSummary
		found, err := utils.GetCache(ctx, rdb, utils.StatsCacheKey, &cached) // Try to get from cache
		if err == nil && found {
			c.JSON(http.StatusOK, cached) // Return cached summary
			return
		}
		summary, err := stats.Summary()
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.StatsCacheKey, summary, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, summary)                                             // Return the summary
	}
}
