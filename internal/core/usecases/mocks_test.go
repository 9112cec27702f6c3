package usecases_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// --- Mock RoutingClient ---

type mockRouter struct {
	calls   atomic.Int32
	routeFn func(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoutedPath, error)
}

func (m *mockRouter) Route(ctx context.Context, waypoints []domain.GeoPoint, mode domain.TravelMode) (*domain.RoutedPath, error) {
	m.calls.Add(1)
	if m.routeFn != nil {
		return m.routeFn(ctx, waypoints)
	}
	return nil, domain.ErrRoutingUnavailable
}

// distanceRouter answers every call with the next distance in kms.
func distanceRouter(kms ...float64) *mockRouter {
	var i atomic.Int32
	return &mockRouter{routeFn: func(ctx context.Context, wps []domain.GeoPoint) (*domain.RoutedPath, error) {
		n := int(i.Add(1)) - 1
		if n >= len(kms) {
			n = len(kms) - 1
		}
		return &domain.RoutedPath{
			Coordinates:    []domain.GeoPoint{wps[1], wps[2], wps[3]},
			DistanceMeters: kms[n] * 1000,
		}, nil
	}}
}

// --- Deterministic RandSource ---

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// --- Recording SearchObserver ---

type recordingObserver struct {
	mu      sync.Mutex
	reports []domain.AttemptReport
}

func (o *recordingObserver) ObserveAttempt(ctx context.Context, r domain.AttemptReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, r)
}

func (o *recordingObserver) all() []domain.AttemptReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.AttemptReport(nil), o.reports...)
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock SessionStore ---

type mockSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.PlanSession
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]domain.PlanSession)}
}

func (m *mockSessions) Get(ctx context.Context, id string) (*domain.PlanSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockSessions) Put(ctx context.Context, s *domain.PlanSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *mockSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// --- Mock SavedRouteRepository ---

type mockSavedRoutes struct {
	mu       sync.Mutex
	routes   map[string]domain.SavedRoute
	createFn func(ctx context.Context, r *domain.SavedRoute) error
	listFn   func(ctx context.Context, limit, offset int) ([]domain.SavedRoute, error)
	nearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.SavedRoute, error)
}

func newMockSavedRoutes() *mockSavedRoutes {
	return &mockSavedRoutes{routes: make(map[string]domain.SavedRoute)}
}

func (m *mockSavedRoutes) Create(ctx context.Context, r *domain.SavedRoute) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[r.ID] = *r
	return nil
}

func (m *mockSavedRoutes) GetByID(ctx context.Context, id string) (*domain.SavedRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *mockSavedRoutes) List(ctx context.Context, limit, offset int) ([]domain.SavedRoute, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockSavedRoutes) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.routes), nil
}

func (m *mockSavedRoutes) Rename(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Name = name
	m.routes[id] = r
	return nil
}

func (m *mockSavedRoutes) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

func (m *mockSavedRoutes) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.SavedRoute, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockEvents struct {
	mu       sync.Mutex
	events   []domain.RouteEvent
	progress int
}

func (m *mockEvents) PublishRouteEvent(ctx context.Context, e *domain.RouteEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *mockEvents) PublishProgress(ctx context.Context, sessionID string, r domain.AttemptReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress++
	return nil
}

func (m *mockEvents) types() []domain.RouteEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RouteEventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// --- Mock TrackEncoder ---

type mockTracks struct {
	encodeFn func(name string, path []domain.GeoPoint) ([]byte, error)
}

func (m *mockTracks) EncodeTrack(name string, path []domain.GeoPoint) ([]byte, error) {
	if m.encodeFn != nil {
		return m.encodeFn(name, path)
	}
	return []byte("<gpx/>"), nil
}

var (
	_ ports.RoutingClient        = (*mockRouter)(nil)
	_ ports.CacheService         = (*mockCache)(nil)
	_ ports.SessionStore         = (*mockSessions)(nil)
	_ ports.SavedRouteRepository = (*mockSavedRoutes)(nil)
	_ ports.EventPublisher       = (*mockEvents)(nil)
	_ ports.TrackEncoder         = (*mockTracks)(nil)
)
