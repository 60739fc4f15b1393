// Package orch coordinates rooms, connections and timers on a single event loop.
package orch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	DefaultGracePeriod    = 2 * time.Minute
	DefaultFormingTimeout = 5 * time.Minute
	DefaultLoopBuffer     = 1024
)

type Options struct {
	Clock          core.Clock
	Policy         app.Policy
	GracePeriod    time.Duration
	FormingTimeout time.Duration
	RoomIDAttempts int
	LoopBuffer     int
	// RoomIDs overrides the room id generator.
	RoomIDs func() domain.RoomID
}

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Policy   app.Policy

	loop      *app.Loop
	clock     core.Clock
	grace     *app.Scheduler
	lifecycle *app.Scheduler

	gracePeriod    time.Duration
	formingTimeout time.Duration
}

func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = core.RealClock{}
	}
	if opts.Policy == nil {
		opts.Policy = app.SimplePolicy{}
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.FormingTimeout <= 0 {
		opts.FormingTimeout = DefaultFormingTimeout
	}
	if opts.LoopBuffer <= 0 {
		opts.LoopBuffer = DefaultLoopBuffer
	}

	loop := app.NewLoop(opts.LoopBuffer)
	rooms := app.NewRoomManager(opts.RoomIDAttempts)
	if opts.RoomIDs != nil {
		rooms.WithIDSource(opts.RoomIDs)
	}
	return &Orchestrator{
		Registry:       app.NewRegistry(),
		Rooms:          rooms,
		Policy:         opts.Policy,
		loop:           loop,
		clock:          opts.Clock,
		grace:          app.NewScheduler("grace", opts.Clock, loop.Post),
		lifecycle:      app.NewScheduler("lifecycle", opts.Clock, loop.Post),
		gracePeriod:    opts.GracePeriod,
		formingTimeout: opts.FormingTimeout,
	}
}

// Run drives the event loop until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	o.loop.Run(ctx)
}

func (o *Orchestrator) Done() <-chan struct{} { return o.loop.Done() }

// Connect registers a freshly opened signaling connection.
func (o *Orchestrator) Connect(ctx context.Context, cid core.ConnID, sig core.SignalConnection) error {
	return o.loop.Call(ctx, func() error {
		o.Registry.Attach(cid, sig)
		return nil
	})
}

// Disconnect forgets a closed connection. A participant it spoke for keeps
// its seat for the grace period.
func (o *Orchestrator) Disconnect(ctx context.Context, cid core.ConnID) error {
	return o.loop.Call(ctx, func() error {
		b, ok := o.Registry.Detach(cid)
		if !ok {
			return nil
		}
		o.armGrace(b)
		return nil
	})
}

func (o *Orchestrator) encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode frame")
		return nil, false
	}
	return b, true
}

// reply sends v to one connection.
func (o *Orchestrator) reply(cid core.ConnID, kind app.Delivery, v any) {
	sig, ok := o.Registry.Signal(cid)
	if !ok {
		return
	}
	f, ok := o.encode(v)
	if !ok {
		return
	}
	o.deliver(cid, sig, kind, f, nil)
}

// publish fans v out to every member of room except the excluded participant.
// Members without a live connection are skipped.
func (o *Orchestrator) publish(room *domain.Room, except domain.ParticipantID, kind app.Delivery, v any) core.PublishResult {
	var res core.PublishResult
	f, ok := o.encode(v)
	if !ok {
		return res
	}
	recipients := lo.Filter(room.Participants(), func(p *domain.Participant, _ int) bool {
		return p.ID != except
	})
	for _, p := range recipients {
		cid, ok := o.Registry.ConnOf(room.ID, p.ID)
		if !ok {
			continue
		}
		sig, ok := o.Registry.Signal(cid)
		if !ok {
			continue
		}
		o.deliver(cid, sig, kind, f, &res)
	}
	o.applyPolicy(kind, res)
	return res
}

func (o *Orchestrator) deliver(cid core.ConnID, sig core.SignalConnection, kind app.Delivery, f core.Frame, res *core.PublishResult) {
	err := sig.TrySend(f)
	switch {
	case err == nil:
		if res != nil {
			res.SendTo++
		}
	case errors.Is(err, core.ErrBackpressure):
		if res != nil {
			res.Dropped = append(res.Dropped, cid)
			return
		}
		o.applyPolicy(kind, core.PublishResult{Dropped: []core.ConnID{cid}})
	default:
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(cid)).Msg("send failed")
	}
}

func (o *Orchestrator) applyPolicy(kind app.Delivery, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(kind, slow) {
		case app.KickMember:
			o.kick(slow)
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "orch").Str("conn", string(slow)).Msg("frame dropped")
		}
	}
}

// kick closes a connection that cannot keep up. The transport reports the
// close back through Disconnect, which starts the grace period.
func (o *Orchestrator) kick(cid core.ConnID) {
	sig, ok := o.Registry.Signal(cid)
	if !ok {
		return
	}
	log.Warn().Str("module", "orch").Str("conn", string(cid)).Msg("kicking slow connection")
	sig.Close()
}

func (o *Orchestrator) players(room *domain.Room) []core.PlayerDTO {
	return lo.Map(room.Participants(), func(p *domain.Participant, _ int) core.PlayerDTO {
		return core.NewPlayerDTO(room, p)
	})
}

func (o *Orchestrator) ack(room *domain.Room, pid domain.ParticipantID, reconnected bool) core.JoinAck {
	return core.JoinAck{
		RoomID:        room.ID,
		ParticipantID: pid,
		HostID:        room.HostID,
		Players:       o.players(room),
		Reconnected:   reconnected,
	}
}

// actor resolves who a request speaks for. A bound connection always speaks
// for its binding; an unbound one is trusted with its claim.
func (o *Orchestrator) actor(cid core.ConnID, roomID domain.RoomID, claimed domain.ParticipantID) (domain.RoomID, domain.ParticipantID, bool) {
	if b, ok := o.Registry.Resolve(cid); ok {
		if roomID == "" {
			roomID = b.RoomID
		}
		return roomID, b.ParticipantID, true
	}
	return roomID, claimed, false
}

// bound returns the room and participant of a connection that must be bound.
func (o *Orchestrator) bound(cid core.ConnID) (*domain.Room, *domain.Participant, error) {
	b, ok := o.Registry.Resolve(cid)
	if !ok {
		return nil, nil, domain.ErrInvalidRequest
	}
	room, ok := o.Rooms.GetRoom(b.RoomID)
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	p, ok := room.Get(b.ParticipantID)
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	return room, p, nil
}
