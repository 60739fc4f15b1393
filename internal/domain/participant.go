// Package domain contains room entities and their invariants.
// No transport, timers or goroutines here.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxParticipantIDLen = 36
	MaxUsernameLen      = 36
	DefaultUsername     = "anon"
)

var ErrUsernameTooLong = fmt.Errorf("%w: username too long", ErrInvalidRequest)

type ParticipantID string

// NewParticipantID returns a fresh stable participant identifier.
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

// Position is the latest state snapshot a participant reported.
type Position struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Anim string  `json:"anim,omitempty"`
}

// Participant is a stable identity inside one room, independent of its connection.
type Participant struct {
	ID       ParticipantID `json:"id"`
	Username string        `json:"username"`
	Position *Position     `json:"position,omitempty"`
	Speaking bool          `json:"speaking,omitempty"`
	JoinedAt time.Time     `json:"joined_at"`
}

func NewParticipant(id ParticipantID, username string, now time.Time) (*Participant, error) {
	if id == "" {
		id = NewParticipantID()
	}
	if len(id) > MaxParticipantIDLen {
		return nil, fmt.Errorf("%w: participant id too long", ErrInvalidRequest)
	}
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	return &Participant{ID: id, Username: name, JoinedAt: now}, nil
}

// NormalizeUsername trims the name and falls back to DefaultUsername when empty.
func NormalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return DefaultUsername, nil
	}
	if len(name) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return name, nil
}

func (p *Participant) SetUsername(username string) error {
	name, err := NormalizeUsername(username)
	if err != nil {
		return err
	}
	p.Username = name
	return nil
}

func (p *Participant) Move(x, y float64, anim string) {
	p.Position = &Position{X: x, Y: y, Anim: anim}
}
