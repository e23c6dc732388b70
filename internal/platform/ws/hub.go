// Package ws provides the websocket hub for live leaderboard updates.
// Clients join named rooms and receive events published to them; a client
// that never joins a room stays connected but receives nothing.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	// roomLeaderboard is the room the join/leave client events operate on.
	roomLeaderboard = "leaderboard"

	// eventJoinLeaderboard and eventLeaveLeaderboard are the client-to-server
	// events managing membership in roomLeaderboard.
	eventJoinLeaderboard  = "joinLeaderboard"
	eventLeaveLeaderboard = "leaveLeaderboard"

	// sendBufferSize bounds the per-client outbound queue. A client that
	// cannot drain its queue misses events instead of stalling publishers.
	sendBufferSize = 16
)

// clientEvent is a message received from a client.
type clientEvent struct {
	Event string `json:"event"`
}

// serverEvent is a message pushed to clients.
type serverEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one websocket connection registered with the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and their room memberships. All methods are
// safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// register adds a freshly upgraded connection to the hub.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// unregister removes a client from the hub and every room it joined, and
// closes its send queue. Safe to call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
}

// join subscribes a client to a room.
func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// leave unsubscribes a client from a room.
func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize returns the current number of subscribers of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Publish delivers an event to every current subscriber of a room. The
// payload is marshaled once; subscribers whose queues are full are skipped,
// so Publish never blocks the caller. Delivery is at most once per
// subscriber and there is no replay for clients joining later.
func (h *Hub) Publish(room, event string, data any) {
	payload, err := json.Marshal(serverEvent{Event: event, Data: data})
	if err != nil {
		slog.Error("failed to marshal broadcast event", "event", event, "error", err)
		return
	}

	// The sends stay under the read lock: unregister closes a client's send
	// queue only while holding the write lock, so a queue can never be
	// closed between membership lookup and send. The sends never block, so
	// the lock is held only briefly.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop this event rather than block.
			slog.Warn("dropping broadcast for slow client", "room", room, "event", event)
		}
	}
}
