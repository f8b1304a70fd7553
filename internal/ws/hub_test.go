package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newSocketPair dials a throwaway upgrade server and returns both ends of
// one live websocket connection
func newSocketPair(t *testing.T) (*Client, *websocket.Conn) {
	t.Helper()
	accepted := make(chan *Client, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- NewClient(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	select {
	case client := <-accepted:
		return client, peer
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade never completed")
		return nil, nil
	}
}

// readEvent reads one JSON frame from the peer side with a deadline
func readEvent(t *testing.T, peer *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event map[string]any
	require.NoError(t, peer.ReadJSON(&event))
	return event
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	first, firstPeer := newSocketPair(t)
	second, secondPeer := newSocketPair(t)
	other, otherPeer := newSocketPair(t)

	hub.JoinWishlist(1, first)
	hub.JoinWishlist(1, second)
	hub.JoinWishlist(2, other)
	assert.Equal(t, 2, hub.WishlistViewers(1))
	assert.Equal(t, 1, hub.WishlistViewers(2))

	hub.BroadcastToWishlist(1, ItemReservedEvent(7, 3, "Alice", 1))

	for _, peer := range []*websocket.Conn{firstPeer, secondPeer} {
		event := readEvent(t, peer)
		assert.Equal(t, "item_reserved", event["type"])
		assert.Equal(t, float64(7), event["gift_id"])
		assert.Equal(t, "Alice", event["user_name"])
	}

	// The other room stays silent
	require.NoError(t, otherPeer.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stray map[string]any
	assert.Error(t, otherPeer.ReadJSON(&stray))
}

func TestBroadcastPrunesDeadConnections(t *testing.T) {
	hub := NewHub()
	dead, deadPeer := newSocketPair(t)
	alive, alivePeer := newSocketPair(t)

	hub.JoinWishlist(1, dead)
	hub.JoinWishlist(1, alive)

	// Kill one connection underneath the hub
	require.NoError(t, dead.Close())
	_ = deadPeer.Close()

	hub.BroadcastToWishlist(1, GiftAddedEvent(9, map[string]any{"id": 9}))

	// The healthy member still got the frame, the dead one is gone
	event := readEvent(t, alivePeer)
	assert.Equal(t, "gift_added", event["type"])
	assert.Equal(t, 1, hub.WishlistViewers(1))

	// A second broadcast works against the pruned set
	hub.BroadcastToWishlist(1, StatsUpdatedEvent())
	event = readEvent(t, alivePeer)
	assert.Equal(t, "stats_updated", event["type"])
}

func TestLeaveDropsEmptyRoom(t *testing.T) {
	hub := NewHub()
	client, _ := newSocketPair(t)

	hub.JoinWishlist(5, client)
	assert.Equal(t, 1, hub.WishlistViewers(5))
	hub.LeaveWishlist(5, client)
	assert.Equal(t, 0, hub.WishlistViewers(5))

	// Leaving twice is harmless
	hub.LeaveWishlist(5, client)
	assert.Equal(t, 0, hub.WishlistViewers(5))
}

func TestLandingBroadcast(t *testing.T) {
	hub := NewHub()
	client, peer := newSocketPair(t)

	hub.JoinLanding(client)
	assert.Equal(t, 1, hub.LandingViewers())

	hub.BroadcastToLanding(StatsUpdatedEvent())
	event := readEvent(t, peer)
	assert.Equal(t, "stats_updated", event["type"])

	hub.LeaveLanding(client)
	assert.Equal(t, 0, hub.LandingViewers())
}

func TestShutdownClosesEverything(t *testing.T) {
	hub := NewHub()
	roomClient, roomPeer := newSocketPair(t)
	landingClient, landingPeer := newSocketPair(t)

	hub.JoinWishlist(1, roomClient)
	hub.JoinLanding(landingClient)
	hub.Shutdown()

	assert.Equal(t, 0, hub.WishlistViewers(1))
	assert.Equal(t, 0, hub.LandingViewers())

	// Both peers observe the close
	for _, peer := range []*websocket.Conn{roomPeer, landingPeer} {
		require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event map[string]any
		assert.Error(t, peer.ReadJSON(&event))
	}
}
