package app

import (
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Signal  core.SignalConnection
	Binding *core.Binding
}

// Registry is the connection table: who is this socket right now.
// It is owned by the event loop and is not safe for concurrent use.
type Registry struct {
	conns        map[core.ConnID]*connEntry
	participants map[core.Binding]core.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		conns:        make(map[core.ConnID]*connEntry),
		participants: make(map[core.Binding]core.ConnID),
	}
}

// Attach registers an open transport connection with no binding yet.
func (r *Registry) Attach(cid core.ConnID, sig core.SignalConnection) {
	if old, ok := r.conns[cid]; ok && old.Binding != nil {
		delete(r.participants, *old.Binding)
	}
	r.conns[cid] = &connEntry{Signal: sig}
	log.Debug().Str("module", "app.registry").Str("conn", string(cid)).Msg("attached connection")
}

// Detach forgets a closed connection and returns the binding it held, if any.
func (r *Registry) Detach(cid core.ConnID) (core.Binding, bool) {
	b, bound := r.Unbind(cid)
	delete(r.conns, cid)
	log.Debug().Str("module", "app.registry").Str("conn", string(cid)).Msg("detached connection")
	return b, bound
}

func (r *Registry) Signal(cid core.ConnID) (core.SignalConnection, bool) {
	e, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return e.Signal, true
}

// Bind points cid at (room, pid), replacing whatever cid was bound to before.
// Any other connection still bound to the same participant is superseded and
// returned so the caller can tell it.
func (r *Registry) Bind(cid core.ConnID, room domain.RoomID, pid domain.ParticipantID) (core.ConnID, bool) {
	e, ok := r.conns[cid]
	if !ok {
		return "", false
	}
	if e.Binding != nil {
		delete(r.participants, *e.Binding)
	}
	b := core.Binding{RoomID: room, ParticipantID: pid}

	var superseded core.ConnID
	if prev, ok := r.participants[b]; ok && prev != cid {
		if pe, ok := r.conns[prev]; ok {
			pe.Binding = nil
		}
		superseded = prev
		log.Info().Str("module", "app.registry").Str("conn", string(prev)).Str("participant", string(pid)).Msg("binding superseded")
	}

	e.Binding = &b
	r.participants[b] = cid
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("room", string(room)).Str("participant", string(pid)).Msg("bound connection")
	return superseded, superseded != ""
}

func (r *Registry) Resolve(cid core.ConnID) (core.Binding, bool) {
	e, ok := r.conns[cid]
	if !ok || e.Binding == nil {
		return core.Binding{}, false
	}
	return *e.Binding, true
}

func (r *Registry) Unbind(cid core.ConnID) (core.Binding, bool) {
	e, ok := r.conns[cid]
	if !ok || e.Binding == nil {
		return core.Binding{}, false
	}
	b := *e.Binding
	e.Binding = nil
	if r.participants[b] == cid {
		delete(r.participants, b)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("room", string(b.RoomID)).Msg("unbound connection")
	return b, true
}

// ConnOf returns the live connection currently speaking for the participant.
func (r *Registry) ConnOf(room domain.RoomID, pid domain.ParticipantID) (core.ConnID, bool) {
	cid, ok := r.participants[core.Binding{RoomID: room, ParticipantID: pid}]
	return cid, ok
}

func (r *Registry) SignalOf(room domain.RoomID, pid domain.ParticipantID) (core.SignalConnection, bool) {
	cid, ok := r.ConnOf(room, pid)
	if !ok {
		return nil, false
	}
	return r.Signal(cid)
}

// UnbindRoom drops every binding into room and returns the affected connections.
func (r *Registry) UnbindRoom(room domain.RoomID) []core.ConnID {
	var out []core.ConnID
	for b, cid := range r.participants {
		if b.RoomID != room {
			continue
		}
		if e, ok := r.conns[cid]; ok {
			e.Binding = nil
		}
		delete(r.participants, b)
		out = append(out, cid)
	}
	if len(out) > 0 {
		log.Info().Str("module", "app.registry").Str("room", string(room)).Int("conns", len(out)).Msg("unbound room")
	}
	return out
}

func (r *Registry) Len() int { return len(r.conns) }
