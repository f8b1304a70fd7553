package main

import (
	"context"                             // context package is needed for Redis operations
	"log"                                 // log package is needed for logging
	"wishlist_system/internal/api"        // Custom package for API handlers
	"wishlist_system/internal/config"     // Custom package for configuration
	"wishlist_system/internal/middleware" // Custom package for middleware
	"wishlist_system/internal/service"    // Ledger, directory and stats services
	"wishlist_system/internal/ws"         // Live-update connection registry

	// For loading .env files
	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Domain services share the DB handle; the hub is the one
	// lifecycle-scoped piece of in-memory state
	ledger := service.NewLedger(db)       // Funding ledger
	directory := service.NewDirectory(db) // Wishlist/gift directory
	stats := service.NewStats(db)         // Landing-page aggregates
	hub := ws.NewHub()                    // Connection registry
	defer hub.Shutdown()                  // Close every live connection on exit

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// CORS for the configured frontend origins
	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsCfg))

	// Health / banner
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Wishlist API is running"})
	})

	// Auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/register", api.RegisterHandler(db, cfg.JWTSecret)) // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(db, cfg.JWTSecret))       // Login endpoint
	authGroup.POST("/google", api.GoogleAuthHandler(db, cfg.JWTSecret, cfg.GoogleClientID))

	// Public reads
	r.GET("/stats", api.StatsHandler(stats, redisClient))                       // Landing stats endpoint
	r.GET("/api/parse-url", api.ParseURLHandler())                              // Gift form autofill endpoint
	r.GET("/wishlist/:slug", api.GetWishlistBySlugHandler(directory, redisClient)) // Public wishlist fetch

	// Gift list is public but owner-aware, so auth is optional here
	r.GET("/wishlists/:id/gifts", middleware.OptionalJWTAuthMiddleware(cfg.JWTSecret), api.ListGiftsHandler(directory))

	// Wishlist routes (protected by JWT)
	wishlistGroup := r.Group("/wishlists")
	wishlistGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	wishlistGroup.POST("/", api.CreateWishlistHandler(directory))                  // Create wishlist endpoint
	wishlistGroup.GET("/", api.ListWishlistsHandler(directory))                    // List own wishlists endpoint
	wishlistGroup.PUT("/:id", api.UpdateWishlistHandler(directory, redisClient))   // Update wishlist endpoint
	wishlistGroup.DELETE("/:id", api.DeleteWishlistHandler(directory, redisClient)) // Delete wishlist endpoint

	// Gift routes (protected by JWT)
	giftGroup := r.Group("/gifts")
	giftGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	giftGroup.POST("/", api.CreateGiftHandler(directory, hub))                            // Create gift endpoint
	giftGroup.PUT("/:id", api.UpdateGiftHandler(directory))                               // Update gift endpoint
	giftGroup.DELETE("/:id", api.DeleteGiftHandler(directory))                            // Delete gift endpoint
	giftGroup.POST("/:id/reserve", api.ReserveGiftHandler(db, ledger, hub))               // Reserve endpoint
	giftGroup.POST("/:id/contribute", api.ContributeHandler(db, ledger, hub, redisClient)) // Contribute endpoint

	// User profile (protected by JWT)
	r.GET("/users/:id", middleware.JWTAuthMiddleware(cfg.JWTSecret), api.GetUserHandler(db))

	// Real-time subscriptions
	r.GET("/ws/test", api.SocketTestHandler())                // WebSocket support probe
	r.GET("/ws/wishlists/:id", api.WishlistSocketHandler(hub)) // Per-wishlist live updates
	r.GET("/ws/landing", api.LandingSocketHandler(hub))        // Landing stats pings

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
