package domain

import "errors"

// Reason is the wire name of a failure reported back to the requester.
type Reason string

const (
	ReasonNotFound       Reason = "not_found"
	ReasonAlreadyStarted Reason = "already_started"
	ReasonNotHost        Reason = "not_host"
	ReasonInvalidRequest Reason = "invalid_request"
	ReasonRateLimited    Reason = "rate_limited"
	ReasonInternal       Reason = "internal"
)

var (
	ErrNotFound       = errors.New("room not found")
	ErrAlreadyStarted = errors.New("room already started")
	ErrNotHost        = errors.New("not the room host")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRateLimited    = errors.New("rate limited")
	ErrInternal       = errors.New("internal error")
)

// ReasonOf maps err to the reason sent to clients. Unknown errors are internal.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrAlreadyStarted):
		return ReasonAlreadyStarted
	case errors.Is(err, ErrNotHost):
		return ReasonNotHost
	case errors.Is(err, ErrInvalidRequest):
		return ReasonInvalidRequest
	case errors.Is(err, ErrRateLimited):
		return ReasonRateLimited
	default:
		return ReasonInternal
	}
}
