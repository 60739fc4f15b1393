package domain

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"
)

type RoomID string

const (
	roomIDMin  = 100000
	roomIDSpan = 900000
)

// NewRoomID draws a 6-digit numeric room id. Uniqueness is the caller's job.
func NewRoomID() RoomID {
	return RoomID(strconv.Itoa(roomIDMin + rand.IntN(roomIDSpan)))
}

type RoomState int

const (
	RoomForming RoomState = iota
	RoomActive
	RoomEnded
)

func (s RoomState) String() string {
	switch s {
	case RoomForming:
		return "forming"
	case RoomActive:
		return "active"
	case RoomEnded:
		return "ended"
	default:
		return "unknown"
	}
}

func (s RoomState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CloseReason explains to remaining members why a room went away.
type CloseReason string

const (
	CloseHostTimeout CloseReason = "host_timeout"
	CloseHostLeft    CloseReason = "host_left"
	CloseHostEnded   CloseReason = "host_ended"
	CloseEmpty       CloseReason = "empty"
)

// Room is the aggregate for one session. The roster keeps join order,
// which is what host succession relies on.
type Room struct {
	ID        RoomID
	HostID    ParticipantID
	CreatedAt time.Time
	State     RoomState
	Presenter ParticipantID

	order   []ParticipantID
	members map[ParticipantID]*Participant
}

func NewRoom(id RoomID, host *Participant, now time.Time) *Room {
	return &Room{
		ID:        id,
		HostID:    host.ID,
		CreatedAt: now,
		State:     RoomForming,
		order:     []ParticipantID{host.ID},
		members:   map[ParticipantID]*Participant{host.ID: host},
	}
}

func (r *Room) Add(p *Participant) error {
	if _, ok := r.members[p.ID]; ok {
		return fmt.Errorf("%w: participant %s already in room %s", ErrInvalidRequest, p.ID, r.ID)
	}
	r.members[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Remove drops the participant from the roster. Host reassignment is left to
// the caller since it depends on the lifecycle state.
func (r *Room) Remove(id ParticipantID) (*Participant, bool) {
	p, ok := r.members[id]
	if !ok {
		return nil, false
	}
	delete(r.members, id)
	r.order = slices.DeleteFunc(r.order, func(pid ParticipantID) bool { return pid == id })
	if r.Presenter == id {
		r.Presenter = ""
	}
	return p, true
}

func (r *Room) Get(id ParticipantID) (*Participant, bool) {
	p, ok := r.members[id]
	return p, ok
}

func (r *Room) Has(id ParticipantID) bool {
	_, ok := r.members[id]
	return ok
}

func (r *Room) Len() int { return len(r.order) }

func (r *Room) IsHost(id ParticipantID) bool { return id != "" && r.HostID == id }

// Participants returns the roster in join order.
func (r *Room) Participants() []*Participant {
	out := make([]*Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.members[id])
	}
	return out
}

// Successor is the earliest-joined participant still present.
func (r *Room) Successor() (ParticipantID, bool) {
	if len(r.order) == 0 {
		return "", false
	}
	return r.order[0], true
}

func (r *Room) PromoteHost(id ParticipantID) error {
	if !r.Has(id) {
		return fmt.Errorf("%w: %s is not a member of room %s", ErrInvalidRequest, id, r.ID)
	}
	r.HostID = id
	return nil
}

// Start moves a forming room to active. A second start is rejected.
func (r *Room) Start() error {
	switch r.State {
	case RoomForming:
		r.State = RoomActive
		return nil
	case RoomActive:
		return ErrAlreadyStarted
	default:
		return ErrNotFound
	}
}

func (r *Room) End() { r.State = RoomEnded }
