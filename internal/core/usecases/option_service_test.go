package usecases_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/usecases"
)

func newOptionService(router *mockRouter) *usecases.OptionService {
	searcher := usecases.NewLoopSearcher(router, usecases.SearchConfig{CallTimeout: time.Second},
		usecases.WithRandSource(fixedRand(0.5)))
	return usecases.NewOptionService(searcher, 3)
}

func TestGenerateOptions_ThreeDirectionsInOrder(t *testing.T) {
	router := distanceRouter(5.1)

	opts, err := newOptionService(router).GenerateOptions(context.Background(), berlin, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	for i, want := range []float64{0, 120, 240} {
		if opts[i].Bearing != want {
			t.Errorf("option %d: expected bearing %v, got %v", i, want, opts[i].Bearing)
		}
	}
	if n := router.calls.Load(); n != 3 {
		t.Fatalf("expected one call per direction, got %d", n)
	}
}

func TestGenerateOptions_DropsFailedDirection(t *testing.T) {
	// The far corner of the 120° loop lies east of the origin.
	router := &mockRouter{routeFn: func(ctx context.Context, wps []domain.GeoPoint) (*domain.RoutedPath, error) {
		if wps[2].Lon > berlin.Lon+0.001 {
			return nil, domain.ErrRoutingUnavailable
		}
		return &domain.RoutedPath{Coordinates: wps, DistanceMeters: 5000}, nil
	}}

	opts, err := newOptionService(router).GenerateOptions(context.Background(), berlin, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	if opts[0].Bearing != 0 || opts[1].Bearing != 240 {
		t.Fatalf("expected bearings 0 and 240, got %v and %v", opts[0].Bearing, opts[1].Bearing)
	}
}

func TestGenerateOptions_NoRouteFound(t *testing.T) {
	router := &mockRouter{}

	opts, err := newOptionService(router).GenerateOptions(context.Background(), berlin, 5)
	if !errors.Is(err, domain.ErrNoRouteFound) {
		t.Fatalf("expected ErrNoRouteFound, got %v", err)
	}
	if len(opts) != 0 {
		t.Fatalf("expected no options, got %d", len(opts))
	}
	if n := router.calls.Load(); n != 9 {
		t.Fatalf("expected 3 attempts in each of 3 directions, got %d calls", n)
	}
}

func TestGenerateOptions_ForwardsObservers(t *testing.T) {
	obs := &recordingObserver{}
	if _, err := newOptionService(distanceRouter(5)).GenerateOptions(context.Background(), berlin, 5, obs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(obs.all()); n != 3 {
		t.Fatalf("expected 3 attempt reports, got %d", n)
	}
}

func TestGenerateOptions_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	router := &mockRouter{routeFn: func(c context.Context, wps []domain.GeoPoint) (*domain.RoutedPath, error) {
		cancel()
		<-c.Done()
		return nil, c.Err()
	}}

	_, err := newOptionService(router).GenerateOptions(ctx, berlin, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// overlapRand fails the test when two goroutines are inside Float64 at once.
type overlapRand struct {
	t      *testing.T
	inside atomic.Int32
}

func (o *overlapRand) Float64() float64 {
	if o.inside.Add(1) > 1 {
		o.t.Error("jitter source entered concurrently")
	}
	time.Sleep(2 * time.Millisecond)
	o.inside.Add(-1)
	return 0.5
}

func TestGenerateOptions_SerialisesJitterSource(t *testing.T) {
	// Every attempt misses by more than the tolerance, so all three
	// directions keep drawing jitter at the same time.
	router := distanceRouter(9)
	searcher := usecases.NewLoopSearcher(router, usecases.SearchConfig{CallTimeout: time.Second},
		usecases.WithRandSource(&overlapRand{t: t}))

	opts, err := usecases.NewOptionService(searcher, 5).GenerateOptions(context.Background(), berlin, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
}
