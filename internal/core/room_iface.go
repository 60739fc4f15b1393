package core

import (
	"time"

	"github.com/dkeye/Lobby/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []ConnID
}

// PlayerDTO is a read-only view for APIs (no transport fields).
type PlayerDTO struct {
	ID       domain.ParticipantID `json:"id"`
	Username string               `json:"username"`
	X        *float64             `json:"x,omitempty"`
	Y        *float64             `json:"y,omitempty"`
	Anim     string               `json:"anim,omitempty"`
	Speaking bool                 `json:"speaking,omitempty"`
	IsHost   bool                 `json:"isHost"`
}

func NewPlayerDTO(room *domain.Room, p *domain.Participant) PlayerDTO {
	dto := PlayerDTO{
		ID:       p.ID,
		Username: p.Username,
		Speaking: p.Speaking,
		IsHost:   room.IsHost(p.ID),
	}
	if p.Position != nil {
		x, y := p.Position.X, p.Position.Y
		dto.X, dto.Y, dto.Anim = &x, &y, p.Position.Anim
	}
	return dto
}

// RoomSnapshot is the read-only room view used by external collaborators.
type RoomSnapshot struct {
	ID        domain.RoomID        `json:"id"`
	State     domain.RoomState     `json:"state"`
	HostID    domain.ParticipantID `json:"hostId"`
	Presenter domain.ParticipantID `json:"presenter,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	Players   []PlayerDTO          `json:"players"`
}

type RoomInfo struct {
	ID          domain.RoomID    `json:"id"`
	State       domain.RoomState `json:"state"`
	MemberCount int              `json:"client_count"`
}

// JoinAck is returned to a participant that created, joined or rejoined a room.
type JoinAck struct {
	RoomID        domain.RoomID        `json:"roomId"`
	ParticipantID domain.ParticipantID `json:"playerId"`
	HostID        domain.ParticipantID `json:"hostId"`
	Players       []PlayerDTO          `json:"players"`
	Reconnected   bool                 `json:"reconnected,omitempty"`
}

// Binding is what a connection currently speaks for.
type Binding struct {
	RoomID        domain.RoomID
	ParticipantID domain.ParticipantID
}
