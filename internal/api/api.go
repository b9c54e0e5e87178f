package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/isaacjstriker/ninetris/games"
	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/isaacjstriker/ninetris/internal/config"
	"github.com/isaacjstriker/ninetris/internal/database"
	"github.com/isaacjstriker/ninetris/internal/stream"
)

// APIServer represents the main server for the application
type APIServer struct {
	listenAddr string
	db         *database.DB
	config     *config.Config
	hub        *stream.Hub
	variants   []games.Variant
	rules      map[string]tetris.Rules
}

// NewAPIServer creates a new APIServer instance
func NewAPIServer(listenAddr string, db *database.DB, cfg *config.Config) *APIServer {
	s := &APIServer{
		listenAddr: listenAddr,
		db:         db,
		config:     cfg,
		hub:        stream.NewHub(cfg.IdleTimeout),
		variants:   games.VariantsWithRules(cfg.RulesFile),
		rules:      make(map[string]tetris.Rules),
	}
	for _, v := range s.variants {
		s.rules[v.Name] = tetris.LoadRules(cfg.RulesFile, v.Name)
	}
	return s
}

// Routes builds the HTTP handler.
func (s *APIServer) Routes() http.Handler {
	router := http.NewServeMux()

	// --- API Routes ---
	router.HandleFunc("POST /api/register", s.handleRegister)
	router.HandleFunc("POST /api/login", s.handleLogin)
	router.HandleFunc("POST /api/logout", requireAuth(s, s.handleLogout))
	router.HandleFunc("GET /api/variants", s.handleGetVariants)
	router.HandleFunc("GET /api/sessions", s.handleGetSessions)
	router.HandleFunc("GET /api/playthroughs/recent", s.handleGetRecentPlaythroughs)
	router.HandleFunc("GET /api/playthroughs/{id}", s.handleGetPlaythrough)

	// --- WebSocket Route for Games ---
	router.HandleFunc("GET /ws/game", s.handleGameConnection)

	return router
}

// Start runs the HTTP server until ctx is cancelled.
func (s *APIServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run()
	defer s.hub.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] API server listening on %s", s.listenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("[INFO] Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
