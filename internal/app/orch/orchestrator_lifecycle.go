package orch

import (
	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) armForming(roomID domain.RoomID) {
	o.lifecycle.Arm(app.TimerKey{Room: roomID}, o.formingTimeout, func() {
		o.expireForming(roomID)
	})
}

// expireForming closes a room that was never started.
func (o *Orchestrator) expireForming(roomID domain.RoomID) {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok || room.State != domain.RoomForming {
		return
	}
	log.Info().Str("module", "orch").Str("room", string(roomID)).Msg("forming timeout")
	o.destroyRoom(room, roomMsg{Type: TypeRoomClosed, RoomID: roomID, Reason: domain.CloseHostTimeout})
}

// destroyRoom ends the room. notice, when set, goes to every member that is
// still connected before the bindings are dropped.
func (o *Orchestrator) destroyRoom(room *domain.Room, notice any) {
	if notice != nil {
		o.publish(room, "", app.DeliveryControl, notice)
	}
	room.End()
	o.lifecycle.CancelRoom(room.ID)
	o.grace.CancelRoom(room.ID)
	o.Registry.UnbindRoom(room.ID)
	o.Rooms.StopRoom(room.ID)
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Bool("notified", notice != nil).Msg("room destroyed")
}

// armGrace keeps a disconnected participant's seat for the grace period.
func (o *Orchestrator) armGrace(b core.Binding) {
	room, ok := o.Rooms.GetRoom(b.RoomID)
	if !ok || !room.Has(b.ParticipantID) {
		return
	}
	if _, live := o.Registry.ConnOf(b.RoomID, b.ParticipantID); live {
		return
	}
	key := app.TimerKey{Room: b.RoomID, Participant: b.ParticipantID}
	o.grace.Arm(key, o.gracePeriod, func() { o.expireGrace(key) })
	log.Info().Str("module", "orch").Str("room", string(b.RoomID)).Str("participant", string(b.ParticipantID)).Dur("grace", o.gracePeriod).Msg("participant disconnected")
}

func (o *Orchestrator) expireGrace(key app.TimerKey) {
	room, ok := o.Rooms.GetRoom(key.Room)
	if !ok || !room.Has(key.Participant) {
		return
	}
	if _, live := o.Registry.ConnOf(key.Room, key.Participant); live {
		return
	}
	log.Info().Str("module", "orch").Str("room", string(key.Room)).Str("participant", string(key.Participant)).Msg("grace expired")
	o.leaveRoom(room, key.Participant)
}
