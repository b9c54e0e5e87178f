package stream

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/isaacjstriker/ninetris/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// Message is the JSON envelope exchanged with a browser client.
type Message struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Key       string            `json:"key,omitempty"`
	State     *tetris.GameState `json:"state,omitempty"`
	Score     int               `json:"score,omitempty"`
	Data      map[string]any    `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Client is one live game connection.
type Client struct {
	ID        string
	Player    types.Player
	Variant   string
	StartedAt time.Time

	conn       *websocket.Conn
	send       chan Message
	input      chan tetris.Command
	done       chan struct{}
	closeOnce  sync.Once
	lastActive atomic.Int64
	hub        *Hub
}

func newClient(conn *websocket.Conn, player types.Player, variant string, hub *Hub) *Client {
	c := &Client{
		ID:        uuid.NewString(),
		Player:    player,
		Variant:   variant,
		StartedAt: time.Now(),
		conn:      conn,
		send:      make(chan Message, sendBuffer),
		input:     make(chan tetris.Command, sendBuffer),
		done:      make(chan struct{}),
		hub:       hub,
	}
	c.touch(c.StartedAt)
	return c
}

// Input delivers commands read from the connection.
func (c *Client) Input() <-chan tetris.Command {
	return c.input
}

// Done is closed once the client is disconnected or reaped.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Deliver queues a message for the client. It reports false when the client
// is closed or too slow to keep up.
func (c *Client) Deliver(m Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

// Post queues a message, waiting for room in the queue. It reports false when
// the client closes first.
func (c *Client) Post(m Message) bool {
	select {
	case c.send <- m:
		return true
	case <-c.done:
		return false
	}
}

// Close disconnects the client. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.hub != nil {
			c.hub.remove(c)
		}
	})
}

// LastActive is the time of the last command received.
func (c *Client) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Client) touch(t time.Time) {
	c.lastActive.Store(t.UnixNano())
}

// readPump turns input messages into commands until the connection drops.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] websocket read error for %s: %v", c.ID, err)
			}
			return
		}
		if msg.Type != "input" {
			continue
		}

		cmd, ok := tetris.ParseCommand(msg.Key)
		if !ok {
			c.Deliver(Message{Type: "error", Error: "unknown command: " + msg.Key})
			continue
		}
		c.touch(time.Now())

		select {
		case c.input <- cmd:
		case <-c.done:
			return
		}
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
// After Close it flushes what is already queued and sends a close frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[WARN] websocket write error for %s: %v", c.ID, err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			for {
				select {
				case msg := <-c.send:
					if err := c.conn.WriteJSON(msg); err != nil {
						return
					}
				default:
					c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
