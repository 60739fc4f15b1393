package signal

import (
	"context"

	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

type createPayload struct {
	Username string `json:"username" validate:"max=256"`
	PlayerID string `json:"playerId" validate:"omitempty,max=36"`
}

type joinPayload struct {
	RoomID   string `json:"roomId" validate:"omitempty,numeric,len=6"`
	Username string `json:"username" validate:"max=256"`
	PlayerID string `json:"playerId" validate:"omitempty,max=36"`
}

type roomRef struct {
	RoomID   string `json:"roomId" validate:"omitempty,numeric,len=6"`
	PlayerID string `json:"playerId" validate:"omitempty,max=36"`
}

// allow applies the per-client limit to room creation and joins.
func (ctl *SignalWSController) allow(s *wsSession) bool {
	if ctl.Limiter == nil {
		return true
	}
	key := s.client
	if key == "" {
		key = string(s.id)
	}
	return ctl.Limiter.Allow(key)
}

func (ctl *SignalWSController) handleCreate(ctx context.Context, s *wsSession, data []byte) {
	const request = "create-room"
	p, err := decode[createPayload](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	ctl.createRoom(ctx, s, request, p.Username, p.PlayerID)
}

func (ctl *SignalWSController) createRoom(ctx context.Context, s *wsSession, request, username, claimed string) {
	if !ctl.allow(s) {
		ctl.sendError(s, request, domain.ErrRateLimited)
		return
	}
	if _, err := ctl.Orch.CreateRoom(ctx, s.id, username, domain.ParticipantID(claimed)); err != nil {
		ctl.sendError(s, request, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(s.id)).Msg("create room")
}

// handleJoin joins roomId, or creates a room when roomId is absent.
func (ctl *SignalWSController) handleJoin(ctx context.Context, s *wsSession, data []byte) {
	const request = "join-room"
	p, err := decode[joinPayload](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	if p.RoomID == "" {
		ctl.createRoom(ctx, s, request, p.Username, p.PlayerID)
		return
	}
	if !ctl.allow(s) {
		ctl.sendError(s, request, domain.ErrRateLimited)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(s.id)).Str("room_id", p.RoomID).Msg("join")
	_, err = ctl.Orch.JoinRoom(ctx, s.id, domain.RoomID(p.RoomID), p.Username, domain.ParticipantID(p.PlayerID))
	if err != nil {
		ctl.sendError(s, request, err)
	}
}

func (ctl *SignalWSController) handleStart(ctx context.Context, s *wsSession, data []byte) {
	const request = "start-game"
	p, err := decode[roomRef](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	if err := ctl.Orch.StartGame(ctx, s.id, domain.RoomID(p.RoomID), domain.ParticipantID(p.PlayerID)); err != nil {
		ctl.sendError(s, request, err)
	}
}

// handleLeave takes the participant out of its room; the socket stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, s *wsSession, data []byte) {
	const request = "player-left"
	p, err := decode[roomRef](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(s.id)).Msg("leave")
	if err := ctl.Orch.LeaveRoom(ctx, s.id, domain.RoomID(p.RoomID), domain.ParticipantID(p.PlayerID)); err != nil {
		ctl.sendError(s, request, err)
	}
}

func (ctl *SignalWSController) handleEnd(ctx context.Context, s *wsSession, data []byte) {
	const request = "end-room"
	p, err := decode[roomRef](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	if err := ctl.Orch.EndRoom(ctx, s.id, domain.RoomID(p.RoomID), domain.ParticipantID(p.PlayerID)); err != nil {
		ctl.sendError(s, request, err)
	}
}
