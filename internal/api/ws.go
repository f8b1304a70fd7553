package api

import (
	"net/http" // HTTP status codes

	"wishlist_system/internal/ws" // Connection registry

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/gorilla/websocket" // WebSocket upgrades
	"github.com/sirupsen/logrus"   // Logging library
)

// upgrader turns HTTP requests into websocket connections. Browsers enforce
// the origin policy; subscriptions are read-only so any origin may listen.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WishlistSocketHandler subscribes a viewer to one wishlist's live updates.
// The server acknowledges with a connected frame and then only pushes;
// incoming client frames are read and discarded.
func WishlistSocketHandler(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response
			logrus.WithFields(logrus.Fields{"wishlist_id": id, "error": err.Error()}).Warn("WebSocket upgrade failed")
			return
		}
		client := ws.NewClient(conn)
		hub.JoinWishlist(id, client)
		_ = client.Send(ws.ConnectedEvent(id)) // Acknowledge the subscription
		client.ReadLoop()                      // Block until the peer goes away
		hub.LeaveWishlist(id, client)
		_ = client.Close()
	}
}

// LandingSocketHandler subscribes a viewer to the global stats pings
func LandingSocketHandler(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Warn("WebSocket upgrade failed")
			return
		}
		client := ws.NewClient(conn)
		hub.JoinLanding(client)
		_ = client.Send(ws.LandingConnectedEvent()) // Acknowledge the subscription
		client.ReadLoop()                           // Block until the peer goes away
		hub.LeaveLanding(client)
		_ = client.Close()
	}
}

// SocketTestHandler reports that live updates are available and where
func SocketTestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"endpoint": "/ws/wishlists/{wishlist_id}",
			"message":  "WebSocket support active",
		})
	}
}
