package domain

import "fmt"

// PlanState is the single lifecycle value of a planning session.
type PlanState string

const (
	StatePlanning   PlanState = "planning"
	StateSearching  PlanState = "searching"
	StatePreviewing PlanState = "previewing"
	StateConfirmed  PlanState = "confirmed"
	StateHandedOff  PlanState = "handed_off"
)

// PlanSession is the caller-side state of one planning request.
// It is only ever changed through Reduce.
type PlanSession struct {
	ID           string        `json:"id"`
	State        PlanState     `json:"state"`
	Origin       GeoPoint      `json:"origin"`
	TargetKm     float64       `json:"target_km"`
	Generation   int           `json:"generation"`
	Options      []RouteOption `json:"options,omitempty"`
	Selected     int           `json:"selected"`
	Route        *RouteOption  `json:"route,omitempty"`
	SavedRouteID string        `json:"saved_route_id,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// NewPlanSession returns a session in the planning state.
func NewPlanSession(id string, origin GeoPoint, targetKm float64) PlanSession {
	return PlanSession{
		ID:       id,
		State:    StatePlanning,
		Origin:   origin,
		TargetKm: targetKm,
		Selected: -1,
	}
}

// Headline returns the option whose distance the UI should show: the confirmed
// route, or the currently selected option while previewing.
func (s PlanSession) Headline() *RouteOption {
	if s.Route != nil {
		r := *s.Route
		return &r
	}
	if s.State == StatePreviewing && s.Selected >= 0 && s.Selected < len(s.Options) {
		o := s.Options[s.Selected]
		return &o
	}
	return nil
}

// PlanEvent is an input to Reduce.
type PlanEvent interface {
	planEvent()
}

// InputChanged is sent when the start point or target distance changes.
type InputChanged struct {
	Origin   GeoPoint
	TargetKm float64
}

// SearchStarted marks the beginning of option generation for a generation.
type SearchStarted struct{ Generation int }

// OptionsReady delivers the options found for a generation.
type OptionsReady struct {
	Generation int
	Options    []RouteOption
}

// SearchFailed reports that option generation produced nothing usable.
type SearchFailed struct {
	Generation int
	Message    string
}

// OptionSelected picks one of the previewed options.
type OptionSelected struct{ Index int }

// Confirmed locks in the selected option.
type Confirmed struct{}

// Exported records the hand-off to an external navigation app.
type Exported struct{}

// Reset discards everything and returns to planning.
type Reset struct{}

// SavedRouteLoaded puts a previously saved loop back on screen.
type SavedRouteLoaded struct{ Route SavedRoute }

// RouteSaved links the confirmed route to its persisted record.
type RouteSaved struct{ ID string }

func (InputChanged) planEvent()     {}
func (SearchStarted) planEvent()    {}
func (OptionsReady) planEvent()     {}
func (SearchFailed) planEvent()     {}
func (OptionSelected) planEvent()   {}
func (Confirmed) planEvent()        {}
func (Exported) planEvent()         {}
func (Reset) planEvent()            {}
func (SavedRouteLoaded) planEvent() {}
func (RouteSaved) planEvent()       {}

// Reduce applies e to s and returns the new session. s is never modified.
// On error the returned session equals s.
func Reduce(s PlanSession, e PlanEvent) (PlanSession, error) {
	switch ev := e.(type) {
	case InputChanged:
		if ev.TargetKm <= 0 {
			return s, fmt.Errorf("%w: target distance must be positive", ErrInvalidInput)
		}
		next := cleared(s)
		next.Origin = ev.Origin
		next.TargetKm = ev.TargetKm
		return next, nil

	case Reset:
		return cleared(s), nil

	case SearchStarted:
		if s.State != StatePlanning {
			return s, transitionErr(s.State, "start search")
		}
		if ev.Generation != s.Generation {
			return s, ErrStaleResult
		}
		next := s
		next.State = StateSearching
		next.Message = ""
		return next, nil

	case OptionsReady:
		if ev.Generation != s.Generation || s.State != StateSearching {
			return s, ErrStaleResult
		}
		if len(ev.Options) == 0 {
			return s, fmt.Errorf("%w: options list is empty", ErrInvalidInput)
		}
		next := s
		next.State = StatePreviewing
		next.Options = ev.Options
		next.Selected = 0
		return next, nil

	case SearchFailed:
		if ev.Generation != s.Generation || s.State != StateSearching {
			return s, ErrStaleResult
		}
		next := s
		next.State = StatePlanning
		next.Message = ev.Message
		return next, nil

	case OptionSelected:
		if s.State != StatePreviewing {
			return s, transitionErr(s.State, "select option")
		}
		if ev.Index < 0 || ev.Index >= len(s.Options) {
			return s, fmt.Errorf("%w: option index %d out of range [0,%d)", ErrInvalidInput, ev.Index, len(s.Options))
		}
		next := s
		next.Selected = ev.Index
		return next, nil

	case Confirmed:
		if s.State != StatePreviewing {
			return s, transitionErr(s.State, "confirm")
		}
		route := s.Options[s.Selected]
		next := s
		next.State = StateConfirmed
		next.Route = &route
		next.Options = nil
		next.Selected = -1
		return next, nil

	case Exported:
		if s.State != StateConfirmed {
			return s, transitionErr(s.State, "export")
		}
		next := s
		next.State = StateHandedOff
		return next, nil

	case SavedRouteLoaded:
		next := cleared(s)
		next.State = StateConfirmed
		next.Origin = ev.Route.Origin
		next.TargetKm = ev.Route.DistanceKm
		next.Route = &RouteOption{Candidate: LoopCandidate{
			Waypoints: ev.Route.Waypoints,
			Path:      ev.Route.Path,
			ActualKm:  ev.Route.DistanceKm,
		}}
		next.SavedRouteID = ev.Route.ID
		return next, nil

	case RouteSaved:
		if s.Route == nil {
			return s, transitionErr(s.State, "mark saved")
		}
		next := s
		next.SavedRouteID = ev.ID
		return next, nil
	}
	return s, fmt.Errorf("%w: unknown event %T", ErrInvalidInput, e)
}

// cleared drops all derived state and bumps the generation so that in-flight
// results are recognised as stale.
func cleared(s PlanSession) PlanSession {
	return PlanSession{
		ID:         s.ID,
		State:      StatePlanning,
		Origin:     s.Origin,
		TargetKm:   s.TargetKm,
		Generation: s.Generation + 1,
		Selected:   -1,
	}
}

func transitionErr(from PlanState, action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, from)
}
