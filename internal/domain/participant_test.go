package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewParticipant_DefaultsAndLimits(t *testing.T) {
	req := require.New(t)

	p, err := NewParticipant("", "  ", time.Now())
	req.NoError(err)
	req.NotEmpty(p.ID)
	req.Equal(DefaultUsername, p.Username)
	req.Nil(p.Position)

	_, err = NewParticipant("", strings.Repeat("x", MaxUsernameLen+1), time.Now())
	req.ErrorIs(err, ErrUsernameTooLong)
	req.ErrorIs(err, ErrInvalidRequest)

	_, err = NewParticipant(ParticipantID(strings.Repeat("x", MaxParticipantIDLen+1)), "Bob", time.Now())
	req.ErrorIs(err, ErrInvalidRequest)
}

func TestParticipant_SetUsernameAndMove(t *testing.T) {
	req := require.New(t)
	p, err := NewParticipant("p1", "Alice", time.Now())
	req.NoError(err)

	req.NoError(p.SetUsername(" Alicia "))
	req.Equal("Alicia", p.Username)
	req.Error(p.SetUsername(strings.Repeat("y", 40)))
	req.Equal("Alicia", p.Username)

	p.Move(1.5, -2, "walk")
	req.Equal(&Position{X: 1.5, Y: -2, Anim: "walk"}, p.Position)
}
