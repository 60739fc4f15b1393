package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dkeye/Lobby/internal/adapters/signal"
	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/config"
	"github.com/dkeye/Lobby/internal/core/coretest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv    *httptest.Server
	client *http.Client
	orch   *orch.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>lobby</html>"), 0o644))
	cfg := &config.Config{Mode: "test", StaticPath: static, Secret: "test-secret"}

	ctx, cancel := context.WithCancel(context.Background())
	o := orch.New(orch.Options{})
	go o.Run(ctx)
	ctl := signal.NewSignalWSController(o, signal.Options{})

	srv := httptest.NewServer(SetupRouter(ctx, cfg, o, ctl))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &fixture{srv: srv, client: &http.Client{Jar: jar}, orch: o}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRouter_Rooms(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	status, body := f.do(t, http.MethodGet, "/api/rooms", nil)
	req.Equal(http.StatusOK, status)
	req.Equal(true, body["ok"])
	req.Empty(body["rooms"])

	req.NoError(f.orch.Connect(ctx, "host", coretest.NewRecordingConn()))
	ack, err := f.orch.CreateRoom(ctx, "host", "Alice", "")
	req.NoError(err)

	status, body = f.do(t, http.MethodGet, "/api/rooms", nil)
	req.Equal(http.StatusOK, status)
	req.Len(body["rooms"], 1)

	status, body = f.do(t, http.MethodGet, "/api/rooms/"+string(ack.RoomID), nil)
	req.Equal(http.StatusOK, status)
	room := body["room"].(map[string]any)
	req.Equal(string(ack.RoomID), room["id"])
	req.Equal("forming", room["state"])
	players := room["players"].([]any)
	req.Len(players, 1)
	req.Equal(true, players[0].(map[string]any)["isHost"])

	status, body = f.do(t, http.MethodGet, "/api/rooms/000000", nil)
	req.Equal(http.StatusNotFound, status)
	req.Equal(false, body["ok"])
}

func TestRouter_Session(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/api/session", nil)
	req.Equal(http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPut, "/api/session", map[string]any{"roomId": "12x"})
	req.Equal(http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPut, "/api/session", map[string]any{
		"roomId":   "123456",
		"playerId": "p-1",
		"username": "Alice",
	})
	req.Equal(http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, "/api/session", nil)
	req.Equal(http.StatusOK, status)
	saved := body["session"].(map[string]any)
	req.Equal("123456", saved["roomId"])
	req.Equal("p-1", saved["playerId"])
	req.Equal("Alice", saved["username"])

	status, _ = f.do(t, http.MethodDelete, "/api/session", nil)
	req.Equal(http.StatusOK, status)
	status, _ = f.do(t, http.MethodGet, "/api/session", nil)
	req.Equal(http.StatusNotFound, status)
}

func TestClientTokenMiddleware(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientTokenMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("client_token")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	token := w.Body.String()
	req.NotEmpty(token)
	req.Contains(w.Header().Get("Set-Cookie"), "ct="+token)

	w = httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: "ct", Value: "known"})
	r.ServeHTTP(w, r2)
	req.Equal("known", w.Body.String())
	req.Empty(w.Header().Get("Set-Cookie"))
}
