package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

// Identity is what a connection currently speaks for.
type Identity struct {
	Conn          core.ConnID          `json:"conn"`
	RoomID        domain.RoomID        `json:"roomId,omitempty"`
	ParticipantID domain.ParticipantID `json:"playerId,omitempty"`
	Username      string               `json:"username,omitempty"`
	Host          bool                 `json:"isHost,omitempty"`
}

func (o *Orchestrator) Snapshot(ctx context.Context, roomID domain.RoomID) (core.RoomSnapshot, error) {
	var snap core.RoomSnapshot
	err := o.loop.Call(ctx, func() error {
		room, ok := o.Rooms.GetRoom(roomID)
		if !ok {
			return fmt.Errorf("snapshot %s: %w", roomID, domain.ErrNotFound)
		}
		snap = core.RoomSnapshot{
			ID:        room.ID,
			State:     room.State,
			HostID:    room.HostID,
			Presenter: room.Presenter,
			CreatedAt: room.CreatedAt,
			Players:   o.players(room),
		}
		return nil
	})
	return snap, err
}

func (o *Orchestrator) ListRooms(ctx context.Context) ([]core.RoomInfo, error) {
	var out []core.RoomInfo
	err := o.loop.Call(ctx, func() error {
		out = o.Rooms.List()
		return nil
	})
	return out, err
}

func (o *Orchestrator) WhoAmI(ctx context.Context, cid core.ConnID) (Identity, error) {
	id := Identity{Conn: cid}
	err := o.loop.Call(ctx, func() error {
		room, p, err := o.bound(cid)
		if err != nil {
			return nil
		}
		id.RoomID = room.ID
		id.ParticipantID = p.ID
		id.Username = p.Username
		id.Host = room.IsHost(p.ID)
		return nil
	})
	return id, err
}
