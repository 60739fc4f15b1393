package signal

import (
	"context"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

type movePayload struct {
	X    *float64 `json:"x" validate:"required"`
	Y    *float64 `json:"y" validate:"required"`
	Anim string   `json:"anim" validate:"max=64"`
}

type speakingPayload struct {
	Speaking bool `json:"speaking"`
}

type roomQuery struct {
	RoomID string `json:"roomId" validate:"omitempty,numeric,len=6"`
}

func (ctl *SignalWSController) handlePing(s *wsSession) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(s, resp)
}

// handleMove ignores any roomId or playerId in the payload; the binding decides.
func (ctl *SignalWSController) handleMove(ctx context.Context, s *wsSession, data []byte) {
	const request = "player-move"
	p, err := decode[movePayload](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	if err := ctl.Orch.UpdatePosition(ctx, s.id, *p.X, *p.Y, p.Anim); err != nil {
		ctl.sendError(s, request, err)
	}
}

func (ctl *SignalWSController) handleSpeaking(ctx context.Context, s *wsSession, data []byte) {
	const request = "player-speaking"
	p, err := decode[speakingPayload](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	if err := ctl.Orch.SetSpeaking(ctx, s.id, p.Speaking); err != nil {
		ctl.sendError(s, request, err)
	}
}

func (ctl *SignalWSController) handleScreenshare(ctx context.Context, s *wsSession, request string, start bool) {
	var err error
	if start {
		err = ctl.Orch.StartScreenshare(ctx, s.id)
	} else {
		err = ctl.Orch.StopScreenshare(ctx, s.id)
	}
	if err != nil {
		ctl.sendError(s, request, err)
	}
}

func (ctl *SignalWSController) handleRoomState(ctx context.Context, s *wsSession, data []byte) {
	const request = "get-room-players"
	p, err := decode[roomQuery](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	roomID := domain.RoomID(p.RoomID)
	if roomID == "" {
		id, err := ctl.Orch.WhoAmI(ctx, s.id)
		if err != nil {
			ctl.sendError(s, request, err)
			return
		}
		roomID = id.RoomID
	}
	snap, err := ctl.Orch.Snapshot(ctx, roomID)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	ctl.sendJSON(s, struct {
		Type string `json:"type"`
		core.RoomSnapshot
	}{"room-state", snap})
}
