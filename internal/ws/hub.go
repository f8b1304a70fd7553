package ws

import (
	"sync" // Concurrency-safe membership
	"time" // Send deadlines

	"github.com/gorilla/websocket" // WebSocket connections
	"github.com/sirupsen/logrus"   // Logging library
)

// writeTimeout bounds every send; a slow connection is dropped, not awaited
const writeTimeout = 2 * time.Second

// Client wraps one upgraded connection. Gorilla connections do not support
// concurrent writers, so every send goes through the client's mutex.
type Client struct {
	conn *websocket.Conn // Underlying connection
	mu   sync.Mutex      // Serializes writes
}

// NewClient wraps an upgraded websocket connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one JSON frame with a short deadline
func (c *Client) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(event)
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// ReadLoop consumes and discards incoming frames until the peer goes away.
// The channel is receive-only from the client's point of view.
func (c *Client) ReadLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub tracks live viewer connections grouped by wishlist, plus a separate
// global group for landing-page viewers. Membership and broadcast are safe
// under concurrent access; a failed send removes only the failing connection.
type Hub struct {
	mu      sync.RWMutex              // Guards both maps
	rooms   map[uint]map[*Client]bool // wishlistID -> connection set
	landing map[*Client]bool          // Landing-page connection set
}

// NewHub creates an empty hub; one instance lives for the whole process
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[uint]map[*Client]bool),
		landing: make(map[*Client]bool),
	}
}

// JoinWishlist subscribes a client to one wishlist group
func (h *Hub) JoinWishlist(wishlistID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[wishlistID] == nil {
		h.rooms[wishlistID] = make(map[*Client]bool)
	}
	h.rooms[wishlistID][c] = true
}

// LeaveWishlist removes a client from its wishlist group
func (h *Hub) LeaveWishlist(wishlistID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(wishlistID, c)
}

// removeFromRoom deletes a client and drops the room once empty; callers hold the lock
func (h *Hub) removeFromRoom(wishlistID uint, c *Client) {
	if room, ok := h.rooms[wishlistID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, wishlistID)
		}
	}
}

// JoinLanding subscribes a client to the landing group
func (h *Hub) JoinLanding(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.landing[c] = true
}

// LeaveLanding removes a client from the landing group
func (h *Hub) LeaveLanding(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.landing, c)
}

// WishlistViewers reports how many connections watch a wishlist
func (h *Hub) WishlistViewers(wishlistID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[wishlistID])
}

// LandingViewers reports how many connections watch the landing page
func (h *Hub) LandingViewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.landing)
}

// BroadcastToWishlist sends an event to every viewer of one wishlist.
// Delivery is best-effort: failed members are collected during the pass
// and removed afterwards, never while the set is being iterated.
func (h *Hub) BroadcastToWishlist(wishlistID uint, event Event) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[wishlistID]))
	for c := range h.rooms[wishlistID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	var failed []*Client
	for _, c := range members {
		if err := c.Send(event); err != nil {
			logrus.WithFields(logrus.Fields{
				"wishlist_id": wishlistID,
				"error":       err.Error(),
			}).Warn("WebSocket broadcast failed, dropping connection")
			failed = append(failed, c)
		}
	}
	if len(failed) > 0 {
		h.mu.Lock()
		for _, c := range failed {
			h.removeFromRoom(wishlistID, c)
		}
		h.mu.Unlock()
		for _, c := range failed {
			_ = c.Close()
		}
	}
}

// BroadcastToLanding sends an event to every landing-page viewer
func (h *Hub) BroadcastToLanding(event Event) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.landing))
	for c := range h.landing {
		members = append(members, c)
	}
	h.mu.RUnlock()

	var failed []*Client
	for _, c := range members {
		if err := c.Send(event); err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("WebSocket landing broadcast failed, dropping connection")
			failed = append(failed, c)
		}
	}
	if len(failed) > 0 {
		h.mu.Lock()
		for _, c := range failed {
			delete(h.landing, c)
		}
		h.mu.Unlock()
		for _, c := range failed {
			_ = c.Close()
		}
	}
}

// Shutdown closes every connection and empties both groups
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			_ = c.Close()
		}
	}
	for c := range h.landing {
		_ = c.Close()
	}
	h.rooms = make(map[uint]map[*Client]bool)
	h.landing = make(map[*Client]bool)
}
