package orch

import (
	"testing"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/core/mocks"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_Backpressure_Drops_State_Frames(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	h := newHarness(t, Options{})
	h.connect("a")
	slow := mocks.NewMockSignalConnection(ctrl)

	gomock.InOrder(
		// room-joined ack
		slow.EXPECT().TrySend(gomock.Any()).Return(nil),
		// player-moved is dropped, nothing else happens
		slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure),
	)
	req.NoError(h.o.Connect(h.ctx, "slow", slow))
	room := h.create("a", "Alice").RoomID
	h.join("slow", room, "Slow")

	req.NoError(h.o.UpdatePosition(h.ctx, "a", 1, 2, "idle"))
	req.Equal([]string{"Alice", "Slow"}, h.roster(room))
}

func TestOrchestrator_Backpressure_Kicks_On_Control_Frames(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	h := newHarness(t, Options{})
	h.connect("a")
	h.connect("b")
	slow := mocks.NewMockSignalConnection(ctrl)

	gomock.InOrder(
		slow.EXPECT().TrySend(gomock.Any()).Return(nil),
		// player-joined for Bob cannot be queued
		slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure),
		slow.EXPECT().Close().Times(1),
	)
	req.NoError(h.o.Connect(h.ctx, "slow", slow))
	room := h.create("a", "Alice").RoomID
	h.join("slow", room, "Slow")

	h.join("b", room, "Bob")
}

func TestOrchestrator_Closed_Conn_Is_Ignored(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	h := newHarness(t, Options{})
	h.connect("a")
	gone := mocks.NewMockSignalConnection(ctrl)

	gone.EXPECT().TrySend(gomock.Any()).Return(nil)
	gone.EXPECT().TrySend(gomock.Any()).Return(core.ErrConnClosed).AnyTimes()
	req.NoError(h.o.Connect(h.ctx, "gone", gone))
	room := h.create("a", "Alice").RoomID
	h.join("gone", room, "Gone")

	req.NoError(h.o.SetSpeaking(h.ctx, "a", true))
	req.NoError(h.o.Rename(h.ctx, "a", "Alicia"))
}

func TestOrchestrator_Panic_Stays_In_Its_Request(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	h := newHarness(t, Options{})
	broken := mocks.NewMockSignalConnection(ctrl)
	broken.EXPECT().TrySend(gomock.Any()).DoAndReturn(func(core.Frame) error {
		panic("boom")
	}).AnyTimes()
	req.NoError(h.o.Connect(h.ctx, "broken", broken))

	// When a request panics while replying
	_, err := h.o.CreateRoom(h.ctx, "broken", "Broken", "")
	req.ErrorIs(err, domain.ErrInternal)
	req.Equal(domain.ReasonInternal, domain.ReasonOf(err))

	// Then other rooms keep working
	alice := h.connect("a")
	bob := h.connect("b")
	room := h.create("a", "Alice").RoomID
	h.join("b", room, "Bob")
	req.NoError(h.o.StartGame(h.ctx, "a", room, ""))
	h.sync()
	req.Len(alice.OfType(TypeGameStarted), 1)
	req.Len(bob.OfType(TypeGameStarted), 1)
}

func TestOrchestrator_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, Options{})

	_, err := h.o.CreateRoom(h.ctx, "nobody", "Ghost", "")
	req.ErrorIs(err, domain.ErrInvalidRequest)
}
