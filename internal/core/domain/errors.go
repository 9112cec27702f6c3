package domain

import "errors"

// Routing client failures. Both are recovered inside the loop search.
var (
	ErrRoutingUnavailable = errors.New("no walkable path connects the waypoints")
	ErrServiceError       = errors.New("routing service error")
)

// ErrNoRouteFound is returned when no direction produced a usable loop.
var ErrNoRouteFound = errors.New("no loop route found: routing server unreachable or location unsuitable")

var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPrecondition      = errors.New("precondition violated")
	ErrInvalidTransition = errors.New("invalid plan state transition")
	ErrStaleResult       = errors.New("result belongs to a superseded plan request")
)
