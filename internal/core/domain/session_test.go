package domain

import (
	"errors"
	"testing"
	"time"
)

var (
	origin  = GeoPoint{Lat: 52.52, Lon: 13.405}
	options = []RouteOption{
		{Bearing: 0, Candidate: LoopCandidate{ActualKm: 5.1, Waypoints: make([]GeoPoint, 3)}},
		{Bearing: 120, Candidate: LoopCandidate{ActualKm: 4.8, Waypoints: make([]GeoPoint, 3)}},
		{Bearing: 240, Candidate: LoopCandidate{ActualKm: 5.4, Waypoints: make([]GeoPoint, 3)}},
	}
)

func mustReduce(t *testing.T, s PlanSession, events ...PlanEvent) PlanSession {
	t.Helper()
	for _, e := range events {
		var err error
		s, err = Reduce(s, e)
		if err != nil {
			t.Fatalf("reduce %T: %v", e, err)
		}
	}
	return s
}

func previewing(t *testing.T) PlanSession {
	return mustReduce(t, NewPlanSession("s1", origin, 5),
		SearchStarted{Generation: 0},
		OptionsReady{Generation: 0, Options: options},
	)
}

func TestReduce_HappyPath(t *testing.T) {
	s := previewing(t)
	if s.State != StatePreviewing || s.Selected != 0 {
		t.Fatalf("expected previewing with first option selected, got %s/%d", s.State, s.Selected)
	}

	s = mustReduce(t, s, OptionSelected{Index: 2})
	if h := s.Headline(); h == nil || h.DistanceKm() != 5.4 {
		t.Fatalf("headline should be the selected option, got %+v", h)
	}

	s = mustReduce(t, s, Confirmed{})
	if s.State != StateConfirmed || s.Route == nil || s.Route.Bearing != 240 || s.Options != nil {
		t.Fatalf("unexpected confirmed session %+v", s)
	}
	if s.Headline().DistanceKm() != 5.4 {
		t.Fatal("headline should be the confirmed route")
	}

	s = mustReduce(t, s, Exported{})
	if s.State != StateHandedOff {
		t.Fatalf("expected handed_off, got %s", s.State)
	}
}

func TestReduce_InputChangedClearsEverything(t *testing.T) {
	s := mustReduce(t, previewing(t), OptionSelected{Index: 1}, Confirmed{})
	s = mustReduce(t, s, InputChanged{Origin: origin, TargetKm: 8})

	if s.State != StatePlanning || s.Route != nil || s.Options != nil || s.Selected != -1 {
		t.Fatalf("expected clean planning session, got %+v", s)
	}
	if s.Generation != 1 || s.TargetKm != 8 {
		t.Fatalf("expected generation 1 and 8 km, got %d and %v", s.Generation, s.TargetKm)
	}
}

func TestReduce_StaleResultsIgnored(t *testing.T) {
	s := mustReduce(t, NewPlanSession("s1", origin, 5), SearchStarted{Generation: 0})
	s = mustReduce(t, s, InputChanged{Origin: origin, TargetKm: 6})
	s = mustReduce(t, s, SearchStarted{Generation: 1})

	next, err := Reduce(s, OptionsReady{Generation: 0, Options: options})
	if !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	if next.State != StateSearching || next.Options != nil {
		t.Fatalf("stale options must not be applied, got %+v", next)
	}

	if _, err := Reduce(s, SearchFailed{Generation: 0, Message: "x"}); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult for stale failure, got %v", err)
	}
}

func TestReduce_SearchFailedReturnsToPlanning(t *testing.T) {
	s := mustReduce(t, NewPlanSession("s1", origin, 5),
		SearchStarted{Generation: 0},
		SearchFailed{Generation: 0, Message: "no loop"},
	)
	if s.State != StatePlanning || s.Message != "no loop" {
		t.Fatalf("unexpected session %+v", s)
	}
	s = mustReduce(t, s, SearchStarted{Generation: 0})
	if s.Message != "" {
		t.Fatal("message should clear when a new search starts")
	}
}

func TestReduce_InvalidTransitions(t *testing.T) {
	planning := NewPlanSession("s1", origin, 5)
	confirmed := mustReduce(t, previewing(t), Confirmed{})

	cases := []struct {
		name string
		s    PlanSession
		e    PlanEvent
		want error
	}{
		{"confirm while planning", planning, Confirmed{}, ErrInvalidTransition},
		{"select while planning", planning, OptionSelected{Index: 0}, ErrInvalidTransition},
		{"export while previewing", previewing(t), Exported{}, ErrInvalidTransition},
		{"search while confirmed", confirmed, SearchStarted{Generation: 0}, ErrInvalidTransition},
		{"select out of range", previewing(t), OptionSelected{Index: 3}, ErrInvalidInput},
		{"negative target", planning, InputChanged{Origin: origin, TargetKm: -1}, ErrInvalidInput},
		{"empty options", mustReduce(t, planning, SearchStarted{}), OptionsReady{}, ErrInvalidInput},
		{"mark saved without route", planning, RouteSaved{ID: "x"}, ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Reduce(tc.s, tc.e)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if next.State != tc.s.State || next.Generation != tc.s.Generation {
				t.Fatalf("rejected event changed the session: %+v", next)
			}
		})
	}
}

func TestReduce_ResetFromAnyState(t *testing.T) {
	for _, s := range []PlanSession{
		NewPlanSession("s1", origin, 5),
		previewing(t),
		mustReduce(t, previewing(t), Confirmed{}, Exported{}),
	} {
		next := mustReduce(t, s, Reset{})
		if next.State != StatePlanning || next.Route != nil || next.Options != nil {
			t.Fatalf("reset from %s left state behind: %+v", s.State, next)
		}
		if next.Generation != s.Generation+1 {
			t.Fatalf("reset must bump the generation")
		}
	}
}

func TestReduce_SavedRouteLoaded(t *testing.T) {
	route := SavedRoute{ID: "r1", Origin: origin, DistanceKm: 7.2, Waypoints: make([]GeoPoint, 3), CreatedAt: time.Now()}
	s := mustReduce(t, previewing(t), SavedRouteLoaded{Route: route})

	if s.State != StateConfirmed || s.SavedRouteID != "r1" {
		t.Fatalf("unexpected session %+v", s)
	}
	if s.Headline().DistanceKm() != 7.2 {
		t.Fatalf("headline should be the loaded route")
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := previewing(t)
	_ = mustReduce(t, s, OptionSelected{Index: 2})
	if s.Selected != 0 {
		t.Fatal("input session was modified")
	}
}
