package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/isaacjstriker/ninetris/internal/stream"
	"github.com/isaacjstriker/ninetris/internal/types"
)

// gameConn is the side of a connection the game loop talks to.
type gameConn interface {
	Input() <-chan tetris.Command
	Done() <-chan struct{}
	Deliver(stream.Message) bool
	Post(stream.Message) bool
}

// handleGameConnection upgrades an HTTP request to a WebSocket connection and
// runs one game session on it.
func (s *APIServer) handleGameConnection(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = tetris.VariantClassic
	}
	rules, ok := s.rules[variant]
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown variant: " + variant})
		return
	}

	player := types.Player{Username: "guest"}
	if token := r.URL.Query().Get("token"); token != "" {
		user, err := s.validateJWT(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "invalid token"})
			return
		}
		player = types.Player{UserID: user.UserID, Username: user.Username}
	}

	client, err := s.hub.Upgrade(w, r, player, variant)
	if err != nil {
		log.Printf("[WARN] Failed to upgrade connection: %v", err)
		return
	}
	defer client.Close()

	session := tetris.NewSession(rules, time.Now().UnixNano())
	playthrough := tetris.NewPlaythrough(session, variant, s.config.TickRate)
	playthrough.UserID = player.UserID

	gameLoop(r.Context(), client, session, playthrough.Step())
	playthrough.Finish(session)

	if player.IsGuest() || s.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.SavePlaythrough(ctx, playthrough); err != nil {
		log.Printf("[WARN] Could not save playthrough %s: %v", playthrough.ID, err)
		return
	}
	client.Post(stream.Message{
		Type: "saved",
		Data: map[string]any{"playthrough_id": playthrough.ID},
	})
}

// gameLoop starts the session and drives it at a fixed step until the game
// ends, the client goes away or ctx is cancelled. A snapshot follows every
// tick and every accepted command.
func gameLoop(ctx context.Context, conn gameConn, session *tetris.Session, step time.Duration) {
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	session.Start()
	state := session.Snapshot()
	conn.Deliver(stream.Message{Type: "state", State: &state})

	for {
		select {
		case <-ctx.Done():
			return

		case <-conn.Done():
			return

		case cmd := <-conn.Input():
			if session.Apply(cmd) {
				state := session.Snapshot()
				conn.Deliver(stream.Message{Type: "state", State: &state})
			}

		case <-ticker.C:
			session.Tick(step)
			state := session.Snapshot()
			conn.Deliver(stream.Message{Type: "state", State: &state})

			if session.IsGameOver() {
				conn.Post(stream.Message{
					Type:  "gameOver",
					Score: session.Score(),
					Data:  map[string]any{"reason": session.EndReason().String()},
				})
				return
			}
		}
	}
}
