package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-2048/internal/session"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

type stubScores struct {
	results []storage.Result
	player  string
	limit   int
	err     error
}

func (s *stubScores) TopScores(limit int) ([]storage.Result, error) {
	s.limit = limit
	return s.results, s.err
}

func (s *stubScores) TopScoresFor(player string, limit int) ([]storage.Result, error) {
	s.player = player
	s.limit = limit
	return s.results, s.err
}

func newTestServer(t *testing.T, scores ScoreReader) (*httptest.Server, *session.Manager) {
	t.Helper()
	manager := session.NewManager(session.WithSeed(42))
	srv := httptest.NewServer(NewServer(":0", manager, scores, nil))
	t.Cleanup(srv.Close)
	return srv, manager
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestCreateAndGetSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", `{"player":"alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[session.Snapshot](t, resp)
	assert.Equal(t, "alice", created.Player)
	assert.NotEmpty(t, created.ID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[session.Snapshot](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Grid, got.Grid)
}

func TestCreateWithoutBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, session.DefaultPlayer, decode[session.Snapshot](t, resp).Player)
}

func TestListSessions(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	manager.Create("a")
	manager.Create("b")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Count    int                `json:"count"`
		Sessions []session.Snapshot `json:"sessions"`
	}](t, resp)
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Sessions, 2)
}

func TestMove(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	snap := manager.Create("p")

	// At least one of the four directions changes a two-tile board.
	var moved bool
	for _, dir := range []string{"left", "right", "up", "down"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+snap.ID+"/move", `{"direction":"`+dir+`"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[moveResponse](t, resp)
		assert.Equal(t, snap.ID, body.Session.ID)
		if body.Moved {
			moved = true
			assert.Equal(t, 1, body.Session.Moves)
			break
		}
	}
	assert.True(t, moved)
}

func TestMoveErrors(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	snap := manager.Create("p")

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"bad direction", snap.ID, `{"direction":"sideways"}`, http.StatusBadRequest},
		{"missing direction", snap.ID, `{}`, http.StatusBadRequest},
		{"malformed body", snap.ID, `{"direction":`, http.StatusBadRequest},
		{"unknown session", "nope", `{"direction":"left"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+tt.id+"/move", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decode[map[string]string](t, resp)["error"])
		})
	}
}

func TestRestartAndDelete(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	snap := manager.Create("p")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+snap.ID+"/restart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restarted := decode[session.Snapshot](t, resp)
	assert.Equal(t, snap.ID, restarted.ID)
	assert.Equal(t, 0, restarted.Score)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/sessions/"+snap.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+snap.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/sessions/"+snap.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScores(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/scores", "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("top scores", func(t *testing.T) {
		stub := &stubScores{results: []storage.Result{{ID: 1, Player: "a", Score: 900}}}
		srv, _ := newTestServer(t, stub)

		resp := doJSON(t, http.MethodGet, srv.URL+"/api/scores?limit=5", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string][]storage.Result](t, resp)
		require.Len(t, body["scores"], 1)
		assert.Equal(t, 900, body["scores"][0].Score)
		assert.Equal(t, 5, stub.limit)
	})

	t.Run("per player with clamped limit", func(t *testing.T) {
		stub := &stubScores{}
		srv, _ := newTestServer(t, stub)

		resp := doJSON(t, http.MethodGet, srv.URL+"/api/scores?player=bob&limit=5000", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "bob", stub.player)
		assert.Equal(t, maxScoreLimit, stub.limit)
		body := decode[map[string][]storage.Result](t, resp)
		assert.NotNil(t, body["scores"])
	})

	t.Run("store error", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubScores{err: errors.New("boom")})
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/scores", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestWebSocketStream(t *testing.T) {
	srv, manager := newTestServer(t, nil)
	snap := manager.Create("ws")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + snap.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first session.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, snap.ID, first.ID)
	assert.Equal(t, snap.Grid, first.Grid)

	restarted, err := manager.Restart(snap.ID)
	require.NoError(t, err)

	var update session.Snapshot
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, restarted.Grid, update.Grid)

	require.NoError(t, manager.Delete(snap.ID))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
