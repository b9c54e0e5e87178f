package stream

import (
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/isaacjstriker/ninetris/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// SessionInfo describes a live game for listings.
type SessionInfo struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Variant    string    `json:"variant"`
	StartedAt  time.Time `json:"started_at"`
	LastActive time.Time `json:"last_active"`
}

// Hub tracks live game connections and closes the ones left idle.
type Hub struct {
	clients     map[string]*Client
	mutex       sync.RWMutex
	idleTimeout time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewHub creates a hub that reaps sessions with no input for idleTimeout.
func NewHub(idleTimeout time.Duration) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		idleTimeout: idleTimeout,
		stopCleanup: make(chan struct{}),
	}
}

// Run reaps idle sessions until Stop is called.
func (h *Hub) Run() {
	interval := min(time.Minute, h.idleTimeout/2)
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if closed := h.cleanupIdleSessions(now); len(closed) > 0 {
				log.Printf("[INFO] Closed %d idle game sessions", len(closed))
			}
		case <-h.stopCleanup:
			log.Println("[INFO] Session cleanup stopped")
			return
		}
	}
}

// Stop ends the cleanup loop and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCleanup)
	})
	for _, c := range h.snapshot() {
		c.Deliver(Message{Type: "session_closed", SessionID: c.ID, Data: map[string]any{"reason": "server shutting down"}})
		c.Close()
	}
}

// Upgrade turns the request into a websocket connection, registers it and
// starts its pumps.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, player types.Player, variant string) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	c := newClient(conn, player, variant, h)
	h.add(c)

	go c.writePump()
	go c.readPump()
	return c, nil
}

func (h *Hub) add(c *Client) {
	h.mutex.Lock()
	h.clients[c.ID] = c
	h.mutex.Unlock()
	log.Printf("[INFO] Game session %s started (%s, %s)", c.ID, c.Variant, c.Player.Username)
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mutex.Unlock()
	if ok {
		log.Printf("[INFO] Game session %s ended", c.ID)
	}
}

func (h *Hub) snapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// cleanupIdleSessions closes sessions whose last input is older than the
// idle timeout and returns their ids.
func (h *Hub) cleanupIdleSessions(now time.Time) []string {
	var closed []string
	for _, c := range h.snapshot() {
		if now.Sub(c.LastActive()) < h.idleTimeout {
			continue
		}
		c.Deliver(Message{
			Type:      "session_closed",
			SessionID: c.ID,
			Data:      map[string]any{"reason": "Session closed due to inactivity"},
		})
		c.Close()
		closed = append(closed, c.ID)
	}
	return closed
}

// Count is the number of live sessions.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Sessions lists live sessions, oldest first.
func (h *Hub) Sessions() []SessionInfo {
	clients := h.snapshot()
	infos := make([]SessionInfo, 0, len(clients))
	for _, c := range clients {
		infos = append(infos, SessionInfo{
			ID:         c.ID,
			Username:   c.Player.Username,
			Variant:    c.Variant,
			StartedAt:  c.StartedAt,
			LastActive: c.LastActive(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].StartedAt.Before(infos[j].StartedAt) })
	return infos
}
