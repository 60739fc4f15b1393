package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, limiter *RoomRateLimiter) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	o := orch.New(orch.Options{})
	go o.Run(ctx)
	ctl := NewSignalWSController(o, Options{Limiter: limiter})

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("client_token", c.Query("ct"))
		ctl.HandleSignal(ctx, c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server, ct string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?ct=" + ct
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// expect reads frames until one of type typ arrives.
func expect(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m map[string]any
		require.NoError(t, ws.ReadJSON(&m))
		if m["type"] == typ {
			return m
		}
	}
}

func TestSignal_Create_Join_Move(t *testing.T) {
	req := require.New(t)
	srv := newServer(t, nil)
	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")

	req.NoError(alice.WriteJSON(map[string]any{"type": "join-room", "username": "Alice"}))
	created := expect(t, alice, "room-created")
	roomID := created["roomId"].(string)
	req.Len(roomID, 6)

	req.NoError(bob.WriteJSON(map[string]any{"type": "join-room", "roomId": roomID, "username": "Bob"}))
	joined := expect(t, bob, "room-joined")
	req.Len(joined["players"], 2)
	pj := expect(t, alice, "player-joined")
	req.Equal("Bob", pj["player"].(map[string]any)["username"])

	req.NoError(bob.WriteJSON(map[string]any{"type": "player-move", "roomId": roomID, "playerId": "spoofed", "x": 3, "y": 4, "anim": "walk"}))
	moved := expect(t, alice, "player-moved")
	req.Equal(joined["playerId"], moved["playerId"])
	req.Equal(3.0, moved["x"])

	req.NoError(alice.WriteJSON(map[string]any{"type": "start-game", "roomId": roomID}))
	expect(t, bob, "game-started")
	expect(t, alice, "start-game-result")

	req.NoError(bob.WriteJSON(map[string]any{"type": "get-room-players"}))
	state := expect(t, bob, "room-state")
	req.Equal("active", state["state"])
}

func TestSignal_Relay(t *testing.T) {
	req := require.New(t)
	srv := newServer(t, nil)
	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	req.NoError(alice.WriteJSON(map[string]any{"type": "create-room", "username": "Alice"}))
	created := expect(t, alice, "room-created")
	req.NoError(bob.WriteJSON(map[string]any{"type": "join-room", "roomId": created["roomId"], "username": "Bob"}))
	joined := expect(t, bob, "room-joined")

	req.NoError(alice.WriteJSON(map[string]any{
		"type":  "webrtc-offer",
		"to":    joined["playerId"],
		"offer": map[string]any{"type": "offer", "sdp": "v=0"},
	}))

	offer := expect(t, bob, "webrtc-offer")
	req.Equal(created["playerId"], offer["from"])
	req.Equal("v=0", offer["payload"].(map[string]any)["sdp"])
}

func TestSignal_Errors(t *testing.T) {
	req := require.New(t)
	srv := newServer(t, NewRoomRateLimiter(1, time.Minute))
	ws := dial(t, srv, "mallory")

	req.NoError(ws.WriteJSON(map[string]any{"type": "join-room", "roomId": "123456"}))
	e := expect(t, ws, "error")
	req.Equal("join-room", e["request"])
	req.Equal("not_found", e["reason"])

	req.NoError(ws.WriteJSON(map[string]any{"type": "join-room", "roomId": "12ab"}))
	e = expect(t, ws, "error")
	req.Equal("invalid_request", e["reason"])

	req.NoError(ws.WriteJSON(map[string]any{"type": "create-room"}))
	e = expect(t, ws, "error")
	req.Equal("rate_limited", e["reason"])

	req.NoError(ws.WriteJSON(map[string]any{"type": "player-move", "x": 1, "y": 1}))
	e = expect(t, ws, "error")
	req.Equal("player-move", e["request"])
	req.Equal("invalid_request", e["reason"])

	req.NoError(ws.WriteJSON(map[string]any{"type": "teleport"}))
	e = expect(t, ws, "error")
	req.Equal("teleport", e["request"])

	req.NoError(ws.WriteJSON(map[string]any{"type": "ping"}))
	expect(t, ws, "pong")
}
