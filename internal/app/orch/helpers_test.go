package orch

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/core/coretest"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t     *testing.T
	o     *Orchestrator
	clock *coretest.ManualClock
	ctx   context.Context
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	clock := coretest.NewManualClock()
	opts.Clock = clock
	o := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go o.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-o.Done()
	})
	return &harness{t: t, o: o, clock: clock, ctx: context.Background()}
}

func (h *harness) connect(cid core.ConnID) *coretest.RecordingConn {
	h.t.Helper()
	sig := coretest.NewRecordingConn()
	require.NoError(h.t, h.o.Connect(h.ctx, cid, sig))
	return sig
}

// sync waits until every event queued so far has run.
func (h *harness) sync() {
	h.t.Helper()
	require.NoError(h.t, h.o.loop.Call(h.ctx, func() error { return nil }))
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.sync()
}

func (h *harness) create(cid core.ConnID, name string) core.JoinAck {
	h.t.Helper()
	ack, err := h.o.CreateRoom(h.ctx, cid, name, "")
	require.NoError(h.t, err)
	return ack
}

func (h *harness) join(cid core.ConnID, room domain.RoomID, name string) core.JoinAck {
	h.t.Helper()
	ack, err := h.o.JoinRoom(h.ctx, cid, room, name, "")
	require.NoError(h.t, err)
	return ack
}

func (h *harness) roster(room domain.RoomID) []string {
	h.t.Helper()
	snap, err := h.o.Snapshot(h.ctx, room)
	require.NoError(h.t, err)
	out := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		out = append(out, p.Username)
	}
	return out
}

func (h *harness) exists(room domain.RoomID) bool {
	_, err := h.o.Snapshot(h.ctx, room)
	return err == nil
}

func connID(i int) core.ConnID {
	return core.ConnID("conn-" + strconv.Itoa(i))
}
