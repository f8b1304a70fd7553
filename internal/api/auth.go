package api

import (
	"crypto/rand"   // Unusable passwords for provisioned accounts
	"encoding/hex"  // Random password encoding
	"encoding/json" // Token info decoding
	"net/http"      // HTTP status codes
	"net/url"       // Token info query encoding
	"time"          // Upstream timeout

	"wishlist_system/internal/domain" // Importing domain models
	"wishlist_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// googleTokenInfoURL validates Google ID tokens; overridable in tests
var googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// RegisterRequest holds the registration payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`  // Email must be provided and valid
	Name     string `json:"name" binding:"required"`         // Display name must be provided
	Password string `json:"password" binding:"required,min=8"` // Password must be at least 8 characters
}

// LoginRequest holds the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// GoogleAuthRequest holds the Google sign-in payload
type GoogleAuthRequest struct {
	IDToken string `json:"id_token" binding:"required"` // Google-issued ID token
}

// AuthResponse is the bearer credential plus the user view
type AuthResponse struct {
	AccessToken string      `json:"access_token"` // JWT token
	TokenType   string      `json:"token_type"`   // Always "bearer"
	User        domain.User `json:"user"`         // The authenticated user
}

// RegisterHandler creates a user and issues a token
func RegisterHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Check that the email is free
		var existing domain.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Email: req.Email, Name: req.Name, Password: string(hash)}
		if err := db.Create(&user).Error; err != nil {
			// The unique index on email is the final arbiter against races
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token and user view
		c.JSON(http.StatusCreated, AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}

// LoginHandler authenticates a user by email and password and issues a token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		// Compare provided password with stored hash. An unrecognized hash
		// format is an authentication failure, never a server error.
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token and user view
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}

// googleTokenInfo is the subset of Google's tokeninfo response we use
type googleTokenInfo struct {
	Audience string `json:"aud"`   // OAuth client the token was issued for
	Email    string `json:"email"` // Verified email address
	Name     string `json:"name"`  // Display name
}

// GoogleAuthHandler exchanges a Google ID token for a local credential,
// provisioning the user by email on first sight
func GoogleAuthHandler(db *gorm.DB, jwtSecret, clientID string) gin.HandlerFunc {
	httpClient := &http.Client{Timeout: 10 * time.Second} // Upstream timeout
	return func(c *gin.Context) {
		var req GoogleAuthRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the ID token against Google's tokeninfo endpoint
		resp, err := httpClient.Get(googleTokenInfoURL + "?id_token=" + url.QueryEscape(req.IDToken))
		if err != nil {
			// The identity provider is unreachable, not the caller's fault
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Google tokeninfo unreachable")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider unavailable"})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			// Google rejected the token
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		var info googleTokenInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		// The token must have been issued for this application
		if clientID != "" && info.Audience != clientID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		var user domain.User // Find or provision the user by email
		if err := db.Where("email = ?", info.Email).First(&user).Error; err != nil {
			name := info.Name
			if name == "" {
				name = info.Email
			}
			// A random unusable password: Google accounts sign in via Google
			raw := make([]byte, 16)
			_, _ = rand.Read(raw)
			hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
			user = domain.User{Email: info.Email, Name: name, Password: string(hash)}
			if err := db.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token and user view
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}
