package app

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

// Loop is the single serialized timeline every mutation runs on.
// Events are executed one at a time in submission order; a panicking event
// is recovered and logged without stopping the loop.
type Loop struct {
	events chan func()
	done   chan struct{}
}

func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 1
	}
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	log.Info().Str("module", "app.loop").Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.loop").Msg("event loop stopped")
			return
		case fn := <-l.events:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "app.loop").Interface("panic", r).Bytes("stack", debug.Stack()).Msg("event panicked")
		}
	}()
	fn()
}

// Post queues fn without waiting for it. It reports false once the loop is gone.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for its result. A panic inside fn is
// reported as domain.ErrInternal for this call only.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("module", "app.loop").Interface("panic", r).Bytes("stack", debug.Stack()).Msg("request panicked")
				res <- fmt.Errorf("%w: %v", domain.ErrInternal, r)
			}
		}()
		res <- fn()
	}
	select {
	case l.events <- wrapped:
	case <-l.done:
		return fmt.Errorf("%w: event loop stopped", domain.ErrInternal)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-res:
		return err
	case <-l.done:
		return fmt.Errorf("%w: event loop stopped", domain.ErrInternal)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }
