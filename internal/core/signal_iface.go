//go:generate mockgen -source=signal_iface.go -destination=mocks/mock_signal.go -package=mocks

package core

import "errors"

// Frame is a raw encoded payload ready for the wire.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking. It returns ErrBackpressure when the
	// queue is full and ErrConnClosed after Close.
	TrySend(f Frame) error
	Close()
}
