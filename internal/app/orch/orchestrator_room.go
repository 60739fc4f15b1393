package orch

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateRoom opens a forming room hosted by the caller. A claimed participant
// id is reused when it is not seated anywhere else.
func (o *Orchestrator) CreateRoom(ctx context.Context, cid core.ConnID, username string, claimed domain.ParticipantID) (core.JoinAck, error) {
	var ack core.JoinAck
	err := o.loop.Call(ctx, func() (err error) {
		ack, err = o.createRoom(cid, username, claimed)
		return err
	})
	return ack, err
}

func (o *Orchestrator) createRoom(cid core.ConnID, username string, claimed domain.ParticipantID) (core.JoinAck, error) {
	if _, ok := o.Registry.Signal(cid); !ok {
		return core.JoinAck{}, fmt.Errorf("%w: unknown connection", domain.ErrInvalidRequest)
	}
	prev, bound := o.Registry.Resolve(cid)
	pid := claimed
	if bound {
		pid = prev.ParticipantID
	} else if pid != "" {
		if _, seated := o.Rooms.FindParticipant(pid); seated {
			pid = ""
		}
	}
	host, err := domain.NewParticipant(pid, username, o.clock.Now())
	if err != nil {
		return core.JoinAck{}, err
	}
	if bound {
		o.leaveBinding(cid, prev)
	}

	room, err := o.Rooms.CreateRoom(host, o.clock.Now())
	if err != nil {
		return core.JoinAck{}, err
	}
	o.Registry.Bind(cid, room.ID, host.ID)
	o.armForming(room.ID)

	ack := o.ack(room, host.ID, false)
	o.reply(cid, app.DeliveryControl, joinedMsg{Type: TypeRoomCreated, JoinAck: ack})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("participant", string(host.ID)).Msg("room created")
	return ack, nil
}

// JoinRoom admits the caller into roomID, or rebinds it to its old seat when
// token names a participant that is still in the room.
func (o *Orchestrator) JoinRoom(ctx context.Context, cid core.ConnID, roomID domain.RoomID, username string, token domain.ParticipantID) (core.JoinAck, error) {
	var ack core.JoinAck
	err := o.loop.Call(ctx, func() (err error) {
		ack, err = o.joinRoom(cid, roomID, username, token)
		return err
	})
	return ack, err
}

func (o *Orchestrator) joinRoom(cid core.ConnID, roomID domain.RoomID, username string, token domain.ParticipantID) (core.JoinAck, error) {
	if _, ok := o.Registry.Signal(cid); !ok {
		return core.JoinAck{}, fmt.Errorf("%w: unknown connection", domain.ErrInvalidRequest)
	}
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return core.JoinAck{}, fmt.Errorf("join %s: %w", roomID, domain.ErrNotFound)
	}
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return core.JoinAck{}, err
	}
	prev, bound := o.Registry.Resolve(cid)

	if bound && prev.RoomID == roomID {
		ack := o.ack(room, prev.ParticipantID, false)
		o.reply(cid, app.DeliveryControl, joinedMsg{Type: TypeRoomJoined, JoinAck: ack})
		return ack, nil
	}
	if token != "" && room.Has(token) {
		return o.reconnect(cid, room, token, username, prev, bound), nil
	}
	if room.State != domain.RoomForming {
		return core.JoinAck{}, fmt.Errorf("join %s: %w", roomID, domain.ErrAlreadyStarted)
	}

	p, err := domain.NewParticipant("", name, o.clock.Now())
	if err != nil {
		return core.JoinAck{}, err
	}
	if bound {
		o.leaveBinding(cid, prev)
	}
	if err := room.Add(p); err != nil {
		return core.JoinAck{}, err
	}
	o.Registry.Bind(cid, room.ID, p.ID)

	o.publish(room, p.ID, app.DeliveryControl, playerJoinedMsg{
		Type:   TypePlayerJoined,
		RoomID: room.ID,
		Player: core.NewPlayerDTO(room, p),
	})
	ack := o.ack(room, p.ID, false)
	o.reply(cid, app.DeliveryControl, joinedMsg{Type: TypeRoomJoined, JoinAck: ack})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("participant", string(p.ID)).Msg("participant joined")
	return ack, nil
}

func (o *Orchestrator) reconnect(cid core.ConnID, room *domain.Room, pid domain.ParticipantID, username string, prev core.Binding, bound bool) core.JoinAck {
	if bound {
		o.leaveBinding(cid, prev)
	}
	if superseded, ok := o.Registry.Bind(cid, room.ID, pid); ok {
		log.Info().Str("module", "orch").Str("conn", string(superseded)).Str("participant", string(pid)).Msg("older connection superseded")
	}
	o.grace.Cancel(app.TimerKey{Room: room.ID, Participant: pid})

	p, _ := room.Get(pid)
	if strings.TrimSpace(username) != "" {
		_ = p.SetUsername(username)
	}
	o.publish(room, pid, app.DeliveryControl, playerMsg{
		Type:     TypePlayerReconnected,
		RoomID:   room.ID,
		PlayerID: pid,
		Username: p.Username,
	})
	ack := o.ack(room, pid, true)
	o.reply(cid, app.DeliveryControl, joinedMsg{Type: TypeRoomJoined, JoinAck: ack})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("participant", string(pid)).Msg("participant reconnected")
	return ack
}

// StartGame moves a forming room to active. Only the host may start it.
func (o *Orchestrator) StartGame(ctx context.Context, cid core.ConnID, roomID domain.RoomID, claimed domain.ParticipantID) error {
	return o.loop.Call(ctx, func() error {
		return o.startGame(cid, roomID, claimed)
	})
}

func (o *Orchestrator) startGame(cid core.ConnID, roomID domain.RoomID, claimed domain.ParticipantID) error {
	roomID, pid, _ := o.actor(cid, roomID, claimed)
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return fmt.Errorf("start %s: %w", roomID, domain.ErrNotFound)
	}
	if !room.IsHost(pid) {
		return fmt.Errorf("start %s: %w", roomID, domain.ErrNotHost)
	}
	if err := room.Start(); err != nil {
		return fmt.Errorf("start %s: %w", roomID, err)
	}
	o.lifecycle.Cancel(app.TimerKey{Room: room.ID})

	o.publish(room, "", app.DeliveryControl, roomMsg{Type: TypeGameStarted, RoomID: room.ID})
	o.reply(cid, app.DeliveryControl, roomMsg{Type: TypeStartGameResult, RoomID: room.ID, OK: true})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Msg("game started")
	return nil
}

// LeaveRoom removes a participant on its own request.
func (o *Orchestrator) LeaveRoom(ctx context.Context, cid core.ConnID, roomID domain.RoomID, claimed domain.ParticipantID) error {
	return o.loop.Call(ctx, func() error {
		return o.leaveRequest(cid, roomID, claimed)
	})
}

func (o *Orchestrator) leaveRequest(cid core.ConnID, roomID domain.RoomID, claimed domain.ParticipantID) error {
	roomID, pid, _ := o.actor(cid, roomID, claimed)
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return fmt.Errorf("leave %s: %w", roomID, domain.ErrNotFound)
	}
	if !room.Has(pid) {
		return fmt.Errorf("leave %s: %w: not a member", roomID, domain.ErrInvalidRequest)
	}
	o.leaveRoom(room, pid)
	o.reply(cid, app.DeliveryControl, roomMsg{Type: TypeLeft, RoomID: roomID})
	return nil
}

// EndRoom terminates the room for everyone. Only the host may end it.
func (o *Orchestrator) EndRoom(ctx context.Context, cid core.ConnID, roomID domain.RoomID, claimed domain.ParticipantID) error {
	return o.loop.Call(ctx, func() error {
		roomID, pid, _ := o.actor(cid, roomID, claimed)
		room, ok := o.Rooms.GetRoom(roomID)
		if !ok {
			return fmt.Errorf("end %s: %w", roomID, domain.ErrNotFound)
		}
		if !room.IsHost(pid) {
			return fmt.Errorf("end %s: %w", roomID, domain.ErrNotHost)
		}
		o.destroyRoom(room, roomMsg{Type: TypeRoomEnded, RoomID: room.ID, Reason: domain.CloseHostEnded})
		return nil
	})
}

// Rename changes the caller's display name and tells the rest of the room.
func (o *Orchestrator) Rename(ctx context.Context, cid core.ConnID, username string) error {
	return o.loop.Call(ctx, func() error {
		room, p, err := o.bound(cid)
		if err != nil {
			return err
		}
		if err := p.SetUsername(username); err != nil {
			return err
		}
		o.publish(room, p.ID, app.DeliveryControl, playerMsg{
			Type:     TypePlayerRenamed,
			RoomID:   room.ID,
			PlayerID: p.ID,
			Username: p.Username,
		})
		return nil
	})
}

// leaveBinding takes cid out of the room it was bound to before it moves on.
func (o *Orchestrator) leaveBinding(cid core.ConnID, b core.Binding) {
	room, ok := o.Rooms.GetRoom(b.RoomID)
	if !ok || !room.Has(b.ParticipantID) {
		o.Registry.Unbind(cid)
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("from_room", string(b.RoomID)).Msg("leaving previous room")
	o.leaveRoom(room, b.ParticipantID)
}

// leaveRoom is the single removal path shared by explicit leave, grace expiry
// and room switching.
func (o *Orchestrator) leaveRoom(room *domain.Room, pid domain.ParticipantID) {
	wasHost := room.IsHost(pid)
	wasPresenter := room.Presenter == pid
	if _, ok := room.Remove(pid); !ok {
		return
	}
	o.grace.Cancel(app.TimerKey{Room: room.ID, Participant: pid})
	if cid, ok := o.Registry.ConnOf(room.ID, pid); ok {
		o.Registry.Unbind(cid)
	}
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("participant", string(pid)).Bool("host", wasHost).Msg("participant left")

	switch {
	case room.Len() == 0:
		o.destroyRoom(room, nil)
		return
	case wasHost && room.State == domain.RoomForming:
		o.destroyRoom(room, roomMsg{Type: TypeRoomClosed, RoomID: room.ID, Reason: domain.CloseHostLeft})
		return
	case wasHost:
		successor, _ := room.Successor()
		_ = room.PromoteHost(successor)
		o.publish(room, "", app.DeliveryControl, hostChangedMsg{
			Type:     TypeHostChanged,
			RoomID:   room.ID,
			HostID:   successor,
			PlayerID: pid,
		})
		log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("host", string(successor)).Msg("host migrated")
	default:
		o.publish(room, "", app.DeliveryControl, playerMsg{Type: TypePlayerLeft, RoomID: room.ID, PlayerID: pid})
	}
	if wasPresenter {
		o.publish(room, "", app.DeliveryControl, screenshareMsg{Type: TypeScreenshareStopped, HostID: pid})
	}
}
