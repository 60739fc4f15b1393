package orch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

// Signaling kinds forwarded between peers without inspection.
const (
	KindOffer        = "webrtc-offer"
	KindAnswer       = "webrtc-answer"
	KindICECandidate = "webrtc-ice-candidate"
	KindICE          = "webrtc-ice"
	KindSession      = "webrtc-session"
)

func IsRelayKind(kind string) bool {
	switch kind {
	case KindOffer, KindAnswer, KindICECandidate, KindICE, KindSession:
		return true
	}
	return false
}

// UpdatePosition stores the caller's latest position and fans it out to the
// rest of the room. Requires a bound connection.
func (o *Orchestrator) UpdatePosition(ctx context.Context, cid core.ConnID, x, y float64, anim string) error {
	return o.loop.Call(ctx, func() error {
		room, p, err := o.bound(cid)
		if err != nil {
			return err
		}
		p.Move(x, y, anim)
		o.publish(room, p.ID, app.DeliveryState, movedMsg{
			Type:     TypePlayerMoved,
			PlayerID: p.ID,
			X:        x,
			Y:        y,
			Anim:     anim,
		})
		return nil
	})
}

func (o *Orchestrator) SetSpeaking(ctx context.Context, cid core.ConnID, speaking bool) error {
	return o.loop.Call(ctx, func() error {
		room, p, err := o.bound(cid)
		if err != nil {
			return err
		}
		p.Speaking = speaking
		o.publish(room, p.ID, app.DeliveryState, speakingMsg{Type: TypePlayerSpeaking, PlayerID: p.ID, Speaking: speaking})
		return nil
	})
}

// Relay forwards an opaque negotiation payload to one peer. Anything that
// cannot be delivered is dropped without telling the sender.
func (o *Orchestrator) Relay(ctx context.Context, cid core.ConnID, roomID domain.RoomID, from, to domain.ParticipantID, kind string, payload json.RawMessage) error {
	if !IsRelayKind(kind) {
		return fmt.Errorf("%w: unknown relay kind %q", domain.ErrInvalidRequest, kind)
	}
	return o.loop.Call(ctx, func() error {
		roomID, from, _ := o.actor(cid, roomID, from)
		room, ok := o.Rooms.GetRoom(roomID)
		if !ok || !room.Has(from) || !room.Has(to) || from == to {
			log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("kind", kind).Msg("relay dropped")
			return nil
		}
		target, ok := o.Registry.ConnOf(room.ID, to)
		if !ok {
			log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("to", string(to)).Msg("relay target offline")
			return nil
		}
		o.reply(target, app.DeliveryControl, relayMsg{Type: kind, From: from, Payload: payload})
		return nil
	})
}

// StartScreenshare makes the caller the room's only presenter.
func (o *Orchestrator) StartScreenshare(ctx context.Context, cid core.ConnID) error {
	return o.loop.Call(ctx, func() error {
		room, p, err := o.bound(cid)
		if err != nil {
			return err
		}
		if room.Presenter != "" && room.Presenter != p.ID {
			return fmt.Errorf("%w: %s is already presenting", domain.ErrInvalidRequest, room.Presenter)
		}
		room.Presenter = p.ID
		o.publish(room, "", app.DeliveryControl, screenshareMsg{Type: TypeScreenshareStarting, HostID: p.ID})
		return nil
	})
}

func (o *Orchestrator) StopScreenshare(ctx context.Context, cid core.ConnID) error {
	return o.loop.Call(ctx, func() error {
		room, p, err := o.bound(cid)
		if err != nil {
			return err
		}
		if room.Presenter != p.ID {
			return fmt.Errorf("%w: not presenting", domain.ErrInvalidRequest)
		}
		room.Presenter = ""
		o.publish(room, "", app.DeliveryControl, screenshareMsg{Type: TypeScreenshareStopped, HostID: p.ID})
		return nil
	})
}
