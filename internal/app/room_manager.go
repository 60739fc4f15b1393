package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultRoomIDAttempts = 10

// RoomManager is the room directory: the single source of truth for which
// rooms exist. Owned by the event loop.
type RoomManager struct {
	rooms    map[domain.RoomID]*domain.Room
	newID    func() domain.RoomID
	attempts int
}

func NewRoomManager(attempts int) *RoomManager {
	if attempts <= 0 {
		attempts = DefaultRoomIDAttempts
	}
	return &RoomManager{
		rooms:    make(map[domain.RoomID]*domain.Room),
		newID:    domain.NewRoomID,
		attempts: attempts,
	}
}

// WithIDSource swaps the room id generator.
func (m *RoomManager) WithIDSource(fn func() domain.RoomID) *RoomManager {
	m.newID = fn
	return m
}

// CreateRoom registers a new forming room hosted by host. Ids are drawn up to
// attempts times against the directory, then once more unchecked; a collision
// on that last draw is refused instead of replacing a live room.
func (m *RoomManager) CreateRoom(host *domain.Participant, now time.Time) (*domain.Room, error) {
	id := m.newID()
	for i := 1; i < m.attempts; i++ {
		if _, taken := m.rooms[id]; !taken {
			break
		}
		id = m.newID()
	}
	if _, taken := m.rooms[id]; taken {
		id = m.newID()
		if _, taken := m.rooms[id]; taken {
			return nil, fmt.Errorf("%w: no free room id after %d attempts", domain.ErrInternal, m.attempts+1)
		}
	}
	room := domain.NewRoom(id, host, now)
	m.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("host", string(host.ID)).Msg("room created")
	return room, nil
}

func (m *RoomManager) GetRoom(id domain.RoomID) (*domain.Room, bool) {
	room, ok := m.rooms[id]
	return room, ok
}

// StopRoom removes the room from the directory; its id becomes reusable.
func (m *RoomManager) StopRoom(id domain.RoomID) (*domain.Room, bool) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, false
	}
	delete(m.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room removed")
	return room, true
}

func (m *RoomManager) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		out = append(out, core.RoomInfo{ID: id, State: r.State, MemberCount: r.Len()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

func (m *RoomManager) Len() int { return len(m.rooms) }

// FindParticipant returns the room pid currently belongs to.
func (m *RoomManager) FindParticipant(pid domain.ParticipantID) (*domain.Room, bool) {
	for _, r := range m.rooms {
		if r.Has(pid) {
			return r, true
		}
	}
	return nil, false
}
