package domain

import "time"

// RouteEventType names a user-visible milestone of a loop.
type RouteEventType string

const (
	RouteConfirmed RouteEventType = "route.confirmed"
	RouteExported  RouteEventType = "route.exported"
	RouteSavedType RouteEventType = "route.saved"
)

// RouteEvent is published to the broker when a loop is confirmed, exported or saved.
type RouteEvent struct {
	Type       RouteEventType `json:"type"`
	SessionID  string         `json:"session_id,omitempty"`
	RouteID    string         `json:"route_id,omitempty"`
	DistanceKm float64        `json:"distance_km"`
	Origin     GeoPoint       `json:"origin"`
	OccurredAt time.Time      `json:"occurred_at"`
}
