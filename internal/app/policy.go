package app

import "github.com/dkeye/Lobby/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Delivery classifies an outbound frame for the backpressure policy.
type Delivery int

const (
	// DeliveryState frames are full snapshots; the next one supersedes a lost one.
	DeliveryState Delivery = iota
	// DeliveryControl frames change membership or lifecycle and are not repeated.
	DeliveryControl
)

type Policy interface {
	OnBackPressure(kind Delivery, conn core.ConnID) BackpressureAction
}

// SimplePolicy drops state frames and kicks connections that cannot keep up
// with control frames.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(kind Delivery, _ core.ConnID) BackpressureAction {
	if kind == DeliveryState {
		return DropFrame
	}
	return KickMember
}
