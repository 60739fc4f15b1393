package app

import (
	"time"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

// TimerKey addresses one pending timer. Room-level timers leave Participant empty.
type TimerKey struct {
	Room        domain.RoomID
	Participant domain.ParticipantID
}

type scheduled struct {
	gen   uint64
	timer core.Timer
}

// Scheduler is a registry of cancellable timers whose callbacks run on the
// event loop. Cancel removes the entry synchronously, so a callback that was
// already queued finds no matching generation and does nothing.
type Scheduler struct {
	name    string
	clock   core.Clock
	post    func(func()) bool
	seq     uint64
	entries map[TimerKey]*scheduled
}

func NewScheduler(name string, clock core.Clock, post func(func()) bool) *Scheduler {
	return &Scheduler{
		name:    name,
		clock:   clock,
		post:    post,
		entries: make(map[TimerKey]*scheduled),
	}
}

// Arm schedules fire after d, replacing any timer already armed for key.
func (s *Scheduler) Arm(key TimerKey, d time.Duration, fire func()) {
	s.Cancel(key)
	s.seq++
	gen := s.seq
	t := s.clock.AfterFunc(d, func() {
		s.post(func() {
			e, ok := s.entries[key]
			if !ok || e.gen != gen {
				log.Debug().Str("module", "app.scheduler").Str("scheduler", s.name).Str("room", string(key.Room)).Msg("stale timer ignored")
				return
			}
			delete(s.entries, key)
			fire()
		})
	})
	s.entries[key] = &scheduled{gen: gen, timer: t}
	log.Debug().Str("module", "app.scheduler").Str("scheduler", s.name).Str("room", string(key.Room)).Str("participant", string(key.Participant)).Dur("after", d).Msg("timer armed")
}

func (s *Scheduler) Cancel(key TimerKey) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, key)
	log.Debug().Str("module", "app.scheduler").Str("scheduler", s.name).Str("room", string(key.Room)).Str("participant", string(key.Participant)).Msg("timer cancelled")
	return true
}

// CancelRoom cancels every timer that belongs to room.
func (s *Scheduler) CancelRoom(room domain.RoomID) int {
	n := 0
	for key := range s.entries {
		if key.Room == room {
			s.Cancel(key)
			n++
		}
	}
	return n
}

func (s *Scheduler) Pending(key TimerKey) bool {
	_, ok := s.entries[key]
	return ok
}

func (s *Scheduler) Len() int { return len(s.entries) }
