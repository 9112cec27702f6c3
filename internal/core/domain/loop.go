package domain

import "time"

// TravelMode selects the routing profile. Loops are always planned on foot.
type TravelMode string

const TravelModeFoot TravelMode = "foot"

// WaypointCount is the number of projected corners on the far side of a loop.
const WaypointCount = 3

// LoopRequest describes one directional loop search.
type LoopRequest struct {
	Origin   GeoPoint `json:"origin"`
	TargetKm float64  `json:"target_km"`
	Bearing  float64  `json:"bearing"`
}

// LoopCandidate is a routed loop produced by a single routing call.
// Path starts and ends at the request origin.
type LoopCandidate struct {
	Waypoints []GeoPoint `json:"waypoints"`
	Path      []GeoPoint `json:"path"`
	ActualKm  float64    `json:"actual_km"`
	RadiusKm  float64    `json:"radius_km"`
}

// RouteOption is one selectable loop, tagged with its search direction.
type RouteOption struct {
	Candidate LoopCandidate `json:"candidate"`
	Bearing   float64       `json:"bearing"`
}

// DistanceKm returns the routed length of the option.
func (o RouteOption) DistanceKm() float64 {
	return o.Candidate.ActualKm
}

// RoutedPath is what the external routing service returns for a waypoint sequence.
type RoutedPath struct {
	Coordinates    []GeoPoint `json:"coordinates"`
	DistanceMeters float64    `json:"distance_meters"`
}

// AttemptReport describes the outcome of one search attempt.
type AttemptReport struct {
	Bearing  float64 `json:"bearing"`
	Attempt  int     `json:"attempt"`
	RadiusKm float64 `json:"radius_km"`
	ActualKm float64 `json:"actual_km,omitempty"`
	DiffKm   float64 `json:"diff_km,omitempty"`
	Accepted bool    `json:"accepted"`
	Err      error   `json:"-"`
	Error    string  `json:"error,omitempty"`
}

// SavedRoute is the persisted record of a confirmed loop.
type SavedRoute struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Path       []GeoPoint `json:"path"`
	DistanceKm float64    `json:"distance_km"`
	Origin     GeoPoint   `json:"origin"`
	CreatedAt  time.Time  `json:"created_at"`
	Waypoints  []GeoPoint `json:"waypoints"`
}

// ExportLink is a hand-off to an external navigation app.
type ExportLink struct {
	URL       string `json:"url"`
	ShareText string `json:"share_text"`
	ShareURL  string `json:"share_url"`
}
