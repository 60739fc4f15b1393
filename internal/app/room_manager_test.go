package app

import (
	"testing"
	"time"

	"github.com/dkeye/Lobby/internal/domain"
	"github.com/stretchr/testify/require"
)

func sequence(ids ...domain.RoomID) func() domain.RoomID {
	i := 0
	return func() domain.RoomID {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func host(t *testing.T, id domain.ParticipantID) *domain.Participant {
	t.Helper()
	p, err := domain.NewParticipant(id, string(id), time.Now())
	require.NoError(t, err)
	return p
}

func TestRoomManager_CreateRoom(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(10)

	room, err := m.CreateRoom(host(t, "alice"), time.Now())

	req.NoError(err)
	req.Len(string(room.ID), 6)
	req.Equal(domain.RoomForming, room.State)
	req.Equal(domain.ParticipantID("alice"), room.HostID)
	got, ok := m.GetRoom(room.ID)
	req.True(ok)
	req.Same(room, got)
}

func TestRoomManager_CreateRoom_Retries_Collisions(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(10).WithIDSource(sequence("111111", "111111", "111111", "222222"))
	_, err := m.CreateRoom(host(t, "alice"), time.Now())
	req.NoError(err)

	room, err := m.CreateRoom(host(t, "bob"), time.Now())

	req.NoError(err)
	req.Equal(domain.RoomID("222222"), room.ID)
	req.Equal(2, m.Len())
}

func TestRoomManager_CreateRoom_Final_Draw_Collision_Fails(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(3).WithIDSource(sequence("111111"))
	first, err := m.CreateRoom(host(t, "alice"), time.Now())
	req.NoError(err)

	// When every draw collides
	_, err = m.CreateRoom(host(t, "bob"), time.Now())

	// Then the live room is left alone
	req.ErrorIs(err, domain.ErrInternal)
	got, _ := m.GetRoom("111111")
	req.Same(first, got)
	req.Equal(domain.ParticipantID("alice"), got.HostID)
}

func TestRoomManager_CreateRoom_Final_Draw_Succeeds(t *testing.T) {
	req := require.New(t)
	// two checked draws collide, the final unchecked draw is free
	m := NewRoomManager(2).WithIDSource(sequence("111111", "111111", "111111", "333333"))
	_, err := m.CreateRoom(host(t, "alice"), time.Now())
	req.NoError(err)

	room, err := m.CreateRoom(host(t, "bob"), time.Now())

	req.NoError(err)
	req.Equal(domain.RoomID("333333"), room.ID)
}

func TestRoomManager_StopRoom_Frees_ID(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(1).WithIDSource(sequence("111111"))
	_, err := m.CreateRoom(host(t, "alice"), time.Now())
	req.NoError(err)

	_, ok := m.StopRoom("111111")
	req.True(ok)
	_, ok = m.StopRoom("111111")
	req.False(ok)

	room, err := m.CreateRoom(host(t, "bob"), time.Now())
	req.NoError(err)
	req.Equal(domain.RoomID("111111"), room.ID)
}

func TestRoomManager_List_And_FindParticipant(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager(10).WithIDSource(sequence("222222", "111111"))
	_, err := m.CreateRoom(host(t, "alice"), time.Now())
	req.NoError(err)
	_, err = m.CreateRoom(host(t, "bob"), time.Now())
	req.NoError(err)

	list := m.List()
	req.Len(list, 2)
	req.Equal(domain.RoomID("111111"), list[0].ID)
	req.Equal(1, list[0].MemberCount)

	room, ok := m.FindParticipant("alice")
	req.True(ok)
	req.Equal(domain.RoomID("222222"), room.ID)
	_, ok = m.FindParticipant("nobody")
	req.False(ok)
}
