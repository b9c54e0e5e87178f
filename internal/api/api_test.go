package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/isaacjstriker/ninetris/internal/config"
	"github.com/isaacjstriker/ninetris/internal/database"
	"github.com/isaacjstriker/ninetris/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*APIServer, *httptest.Server) {
	t.Helper()
	db, err := database.Connect("sqlite://" + filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.CreateTables(context.Background()))

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		RulesFile:   filepath.Join(t.TempDir(), "missing.lua"),
		TickRate:    200,
		IdleTimeout: time.Minute,
	}
	s := NewAPIServer("127.0.0.1:0", db, cfg)
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	t.Cleanup(s.hub.Stop)
	return s, srv
}

func postJSON(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func registerAndLogin(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/register", RegisterUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/login", LoginRequest{Username: "alice", Password: "hunter22"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login LoginResponse
	decode(t, resp, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestRegisterAndLogin(t *testing.T) {
	_, srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"duplicate user", "/api/register", RegisterUserRequest{Username: "alice", Email: "a2@example.com", Password: "hunter22"}, http.StatusConflict},
		{"bad username", "/api/register", RegisterUserRequest{Username: "a", Email: "a@example.com", Password: "hunter22"}, http.StatusBadRequest},
		{"weak password", "/api/register", RegisterUserRequest{Username: "bob", Email: "b@example.com", Password: "short"}, http.StatusBadRequest},
		{"wrong password", "/api/login", LoginRequest{Username: "alice", Password: "hunter23"}, http.StatusForbidden},
		{"unknown user", "/api/login", LoginRequest{Username: "nobody", Password: "hunter22"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+tt.path, tt.body, "")
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp := postJSON(t, srv.URL+"/api/logout", struct{}{}, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/logout", struct{}{}, "not-a-token")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/logout", struct{}{}, token)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/register", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetVariants(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/variants")
	require.NoError(t, err)
	var variants []struct {
		Name       string `json:"name"`
		LockPolicy string `json:"lock_policy"`
	}
	decode(t, resp, &variants)

	require.Len(t, variants, 3)
	policies := map[string]string{}
	for _, v := range variants {
		policies[v.Name] = v.LockPolicy
	}
	assert.Equal(t, "immediate", policies[tetris.VariantClassic])
	assert.Equal(t, "delayed", policies[tetris.VariantTouch])
	assert.Equal(t, "delayed", policies[tetris.VariantHybrid])
}

func TestPlaythroughEndpoints(t *testing.T) {
	s, srv := newTestServer(t)
	p := database.DemoPlaythrough(9, 60)
	require.NoError(t, s.db.SavePlaythrough(context.Background(), p))

	resp, err := http.Get(srv.URL + "/api/playthroughs/recent?limit=5")
	require.NoError(t, err)
	var recent []database.PlaythroughSummary
	decode(t, resp, &recent)
	require.Len(t, recent, 1)
	assert.Equal(t, p.ID, recent[0].ID)

	resp, err = http.Get(srv.URL + "/api/playthroughs/" + p.ID)
	require.NoError(t, err)
	var loaded tetris.Playthrough
	decode(t, resp, &loaded)
	assert.Equal(t, p.Inputs, loaded.Inputs)

	resp, err = http.Get(srv.URL + "/api/playthroughs/" + p.ID + "?verify=true")
	require.NoError(t, err)
	var verified struct {
		Verified bool   `json:"verified"`
		Error    string `json:"error"`
	}
	decode(t, resp, &verified)
	assert.True(t, verified.Verified, verified.Error)

	statuses := []struct {
		path string
		want int
	}{
		{"/api/playthroughs/recent?limit=abc", http.StatusBadRequest},
		{"/api/playthroughs/recent?limit=1000", http.StatusBadRequest},
		{"/api/playthroughs/not-a-uuid", http.StatusBadRequest},
		{"/api/playthroughs/6f1c2b8e-2f7d-4c55-9a39-0f3b7c7a1d11", http.StatusNotFound},
	}
	for _, tt := range statuses {
		resp, err := http.Get(srv.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.want, resp.StatusCode, tt.path)
	}
}

func TestGameConnectionRejectsBadRequests(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws/game?variant=nonsense")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws/game?token=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGameOverWebSocketArchivesPlaythrough(t *testing.T) {
	s, srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game?variant=classic&token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first stream.Message
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, "state", first.Type)
	require.NotNil(t, first.State)
	assert.Equal(t, "running", first.State.State)

	// Hard drops in the spawn column stack up until the game locks out.
	go func() {
		for i := 0; i < 40; i++ {
			if conn.WriteJSON(stream.Message{Type: "input", Key: "drop"}) != nil {
				return
			}
		}
	}()

	var gameOver, saved *stream.Message
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for saved == nil {
		var msg stream.Message
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case "gameOver":
			gameOver = &msg
		case "saved":
			saved = &msg
		}
	}

	require.NotNil(t, gameOver)
	assert.Greater(t, gameOver.Score, 0)
	assert.Equal(t, "lock_out", gameOver.Data["reason"])

	id, _ := saved.Data["playthrough_id"].(string)
	p, err := s.db.GetPlaythrough(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, gameOver.Score, p.Score)
	assert.NotZero(t, p.UserID)
	assert.NoError(t, p.Verify())
}

type fakeConn struct {
	input chan tetris.Command
	done  chan struct{}

	mu   sync.Mutex
	msgs []stream.Message
}

func newFakeConn() *fakeConn {
	return &fakeConn{input: make(chan tetris.Command, 64), done: make(chan struct{})}
}

func (f *fakeConn) Input() <-chan tetris.Command { return f.input }
func (f *fakeConn) Done() <-chan struct{}        { return f.done }

func (f *fakeConn) Deliver(m stream.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m)
	return true
}

func (f *fakeConn) Post(m stream.Message) bool { return f.Deliver(m) }

func (f *fakeConn) last() stream.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[len(f.msgs)-1]
}

func TestGameLoopStops(t *testing.T) {
	tests := []struct {
		name string
		stop func(cancel context.CancelFunc, conn *fakeConn)
	}{
		{"context cancelled", func(cancel context.CancelFunc, _ *fakeConn) { cancel() }},
		{"client gone", func(_ context.CancelFunc, conn *fakeConn) { close(conn.done) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			conn := newFakeConn()
			session := tetris.NewSession(tetris.DefaultRules(tetris.VariantClassic), 1)

			finished := make(chan struct{})
			go func() {
				gameLoop(ctx, conn, session, time.Millisecond)
				close(finished)
			}()

			time.Sleep(20 * time.Millisecond)
			tt.stop(cancel, conn)

			select {
			case <-finished:
			case <-time.After(2 * time.Second):
				t.Fatal("game loop kept running")
			}
			assert.Equal(t, "state", conn.last().Type)
			assert.False(t, session.IsGameOver())
		})
	}
}

func TestGameLoopEndsOnGameOver(t *testing.T) {
	conn := newFakeConn()
	for i := 0; i < 40; i++ {
		conn.input <- tetris.CmdHardDrop
	}
	session := tetris.NewSession(tetris.DefaultRules(tetris.VariantTouch), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gameLoop(ctx, conn, session, time.Millisecond)

	require.True(t, session.IsGameOver())
	last := conn.last()
	assert.Equal(t, "gameOver", last.Type)
	assert.Equal(t, session.Score(), last.Score)
}
