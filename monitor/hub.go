// Package monitor rebroadcasts controller events to websocket observers
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// DefaultWriteTimeout bounds how long a slow client may hold up a broadcast
const DefaultWriteTimeout = 100 * time.Millisecond

// Event is the JSON envelope sent to clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub tracks connected websocket clients and fans events out to them
type Hub struct {
	clients      map[*websocket.Conn]bool
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	mu           sync.Mutex
}

// NewHub returns an empty Hub accepting connections from any origin
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout: DefaultWriteTimeout,
	}
}

// ServeHTTP upgrades the request and registers the connection. Messages from
// clients are read and discarded; a read error removes the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Log.Warnf("Failed to upgrade monitor connection: %v", err)
		return
	}
	h.AddClient(conn)
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				h.RemoveClient(conn)
				return
			}
		}
	}()
}

// AddClient registers conn
func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	common.Log.Debugf("Monitor client connected from %s", conn.RemoteAddr())
}

// RemoveClient unregisters and closes conn
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast writes event to every client concurrently. Clients that fail the
// write are dropped.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()

	var (
		wg       sync.WaitGroup
		failed   []*websocket.Conn
		failedMu sync.Mutex
	)
	for _, conn := range clients {
		wg.Add(1)
		go func(c *websocket.Conn) {
			defer wg.Done()
			c.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.WriteJSON(event); err != nil {
				failedMu.Lock()
				failed = append(failed, c)
				failedMu.Unlock()
			}
		}(conn)
	}
	wg.Wait()

	for _, conn := range failed {
		h.RemoveClient(conn)
	}
}

// Close disconnects every client
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

// Watch broadcasts every event received on sub until ctx is done. Events with
// no websocket representation are skipped.
func (h *Hub) Watch(ctx context.Context, sub *common.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-sub.Events():
			if event, ok := Translate(raw); ok {
				h.Broadcast(event)
			}
		}
	}
}
