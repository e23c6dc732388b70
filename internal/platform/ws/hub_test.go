package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer starts an HTTP server exposing the hub at /ws and returns
// its websocket URL.
func newTestServer(t *testing.T, hub *Hub) string {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", ServeWS(hub))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// dial opens a websocket connection to the test server.
func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "failed to dial websocket")
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForRoomSize polls the hub until the room reaches the wanted size.
func waitForRoomSize(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return hub.RoomSize(room) == want
	}, 2*time.Second, 10*time.Millisecond, "room %q never reached size %d", room, want)
}

func TestHub_JoinAndPublish(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	subscriber := dial(t, url)
	require.NoError(t, subscriber.WriteJSON(map[string]string{"event": "joinLeaderboard"}))

	// Connected but never joined: must receive nothing
	bystander := dial(t, url)

	waitForRoomSize(t, hub, roomLeaderboard, 1)

	hub.Publish(roomLeaderboard, "leaderboardUpdate", map[string]any{"claim": 7})

	require.NoError(t, subscriber.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := subscriber.ReadMessage()
	require.NoError(t, err, "subscriber should receive the broadcast")

	var got serverEvent
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "leaderboardUpdate", got.Event)
	data, ok := got.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), data["claim"])

	// The bystander's read times out: no message was delivered
	require.NoError(t, bystander.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bystander.ReadMessage()
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout(), "bystander read should time out, got: %v", err)
}

func TestHub_Leave(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(map[string]string{"event": "joinLeaderboard"}))
	waitForRoomSize(t, hub, roomLeaderboard, 1)

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "leaveLeaderboard"}))
	waitForRoomSize(t, hub, roomLeaderboard, 0)

	hub.Publish(roomLeaderboard, "leaderboardUpdate", nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "a departed client receives nothing")
}

func TestHub_DisconnectLeavesRooms(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(map[string]string{"event": "joinLeaderboard"}))
	waitForRoomSize(t, hub, roomLeaderboard, 1)

	conn.Close()
	waitForRoomSize(t, hub, roomLeaderboard, 0)
}

func TestHub_UnknownEventIgnored(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(map[string]string{"event": "somethingElse"}))

	// The connection stays up and a later join still works
	require.NoError(t, conn.WriteJSON(map[string]string{"event": "joinLeaderboard"}))
	waitForRoomSize(t, hub, roomLeaderboard, 1)
}

func TestHub_PublishDoesNotBlockOnSlowClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	// A client whose queue is already full and is never drained
	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	slow.send <- []byte("stuck")
	hub.register(slow)
	hub.join(slow, roomLeaderboard)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(roomLeaderboard, "leaderboardUpdate", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow client")
	}
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register(c)
	hub.join(c, roomLeaderboard)

	hub.unregister(c)
	// A second unregister must not panic on the closed channel
	hub.unregister(c)

	assert.Zero(t, hub.RoomSize(roomLeaderboard))
}

func TestHub_PublishDuringDisconnect(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	// Clients churn through register/join/unregister while broadcasts run.
	// A send on a queue closed by unregister would panic the publisher.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			c := &Client{hub: hub, send: make(chan []byte, 1)}
			hub.register(c)
			hub.join(c, roomLeaderboard)
			hub.unregister(c)
		}
	}()

	for i := 0; i < 5000; i++ {
		hub.Publish(roomLeaderboard, "leaderboardUpdate", i)
	}
	<-done

	assert.Zero(t, hub.RoomSize(roomLeaderboard))
}

func TestHub_PublishToEmptyRoom(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	// Publishing with no subscribers is a no-op, not an error
	hub.Publish(roomLeaderboard, "leaderboardUpdate", map[string]string{"ok": "yes"})
}
