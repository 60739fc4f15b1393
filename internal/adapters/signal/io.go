package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, s *wsSession) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(s.id)).Msg("readPump closing")
		cancel()
		s.conn.Close()
		if err := ctl.Orch.Disconnect(context.Background(), s.id); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Msg("disconnect")
		}
	}()

	pongWait := ctl.pingPeriod * 10 / 9
	_ = s.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.conn.SetPongHandler(func(string) error {
		return s.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(s.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := s.conn.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Msg("readPump read error")
				}
				return
			}
			_ = s.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
			ctl.handleSignal(ctx, s, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, s *wsSession, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(s, "", domain.ErrInvalidRequest)
		return
	}

	switch env.Type {
	case "create-room":
		ctl.handleCreate(ctx, s, data)
	case "join-room":
		ctl.handleJoin(ctx, s, data)
	case "start-game":
		ctl.handleStart(ctx, s, data)
	case "player-left", "leave":
		ctl.handleLeave(ctx, s, data)
	case "end-room":
		ctl.handleEnd(ctx, s, data)
	case "player-move":
		ctl.handleMove(ctx, s, data)
	case "player-speaking":
		ctl.handleSpeaking(ctx, s, data)
	case "request-screenshare-start":
		ctl.handleScreenshare(ctx, s, env.Type, true)
	case "request-screenshare-stop":
		ctl.handleScreenshare(ctx, s, env.Type, false)
	case "get-room-players":
		ctl.handleRoomState(ctx, s, data)
	case "rename":
		ctl.handleRename(ctx, s, data)
	case "whoami":
		ctl.handleWhoAmI(ctx, s)
	case "ping":
		ctl.handlePing(s)
	default:
		if isRelay(env.Type) {
			ctl.handleRelay(ctx, s, env.Type, data)
			return
		}
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(s, env.Type, domain.ErrInvalidRequest)
	}
}

// decode unmarshals and validates an inbound payload.
func decode[T any](ctl *SignalWSController, data []byte) (T, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if err := ctl.validate.Struct(p); err != nil {
		return p, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return p, nil
}

func (ctl *SignalWSController) sendJSON(s *wsSession, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = s.conn.TrySend(core.Frame(b))
}

type errorMsg struct {
	Type    string        `json:"type"`
	Request string        `json:"request,omitempty"`
	Reason  domain.Reason `json:"reason"`
}

func (ctl *SignalWSController) sendError(s *wsSession, request string, err error) {
	log.Debug().Err(err).Str("module", "signal").Str("conn", string(s.id)).Str("request", request).Msg("request failed")
	ctl.sendJSON(s, errorMsg{Type: "error", Request: request, Reason: domain.ReasonOf(err)})
}
