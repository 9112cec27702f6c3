package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

const maxRouteNameLen = 120

// SavedRouteService handles the runner's saved loops.
type SavedRouteService struct {
	routes    ports.SavedRouteRepository
	events    ports.EventPublisher
	scheduler ports.BookmarkScheduler
	now       func() time.Time
}

// NewSavedRouteService creates a new SavedRouteService. events and scheduler may be nil;
// without a scheduler routes are written directly.
func NewSavedRouteService(routes ports.SavedRouteRepository, events ports.EventPublisher, scheduler ports.BookmarkScheduler) *SavedRouteService {
	return &SavedRouteService{routes: routes, events: events, scheduler: scheduler, now: time.Now}
}

// WithClock replaces the time source used for creation timestamps.
func (s *SavedRouteService) WithClock(now func() time.Time) *SavedRouteService {
	s.now = now
	return s
}

// DefaultRouteName is the name given to a loop saved without one.
func DefaultRouteName(at time.Time) string {
	return "Run " + at.Format("2006-01-02")
}

// Save stores a confirmed loop.
func (s *SavedRouteService) Save(ctx context.Context, name string, origin domain.GeoPoint, route domain.RouteOption) (*domain.SavedRoute, error) {
	if len(route.Candidate.Path) == 0 {
		return nil, fmt.Errorf("%w: route has no path", domain.ErrPrecondition)
	}

	now := s.now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultRouteName(now)
	}
	if len(name) > maxRouteNameLen {
		return nil, fmt.Errorf("%w: name longer than %d characters", domain.ErrInvalidInput, maxRouteNameLen)
	}

	rec := &domain.SavedRoute{
		ID:         uuid.NewString(),
		Name:       name,
		Path:       route.Candidate.Path,
		DistanceKm: route.DistanceKm(),
		Origin:     origin,
		CreatedAt:  now,
		Waypoints:  route.Candidate.Waypoints,
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleBookmark(ctx, *rec); err != nil {
			return nil, fmt.Errorf("schedule bookmark: %w", err)
		}
		return rec, nil
	}

	if err := s.routes.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save route: %w", err)
	}
	publishRouteEvent(ctx, s.events, &domain.RouteEvent{
		Type:       domain.RouteSavedType,
		RouteID:    rec.ID,
		DistanceKm: rec.DistanceKm,
		Origin:     rec.Origin,
		OccurredAt: now,
	})
	return rec, nil
}

// List returns a page of saved routes, newest first, and the total count.
func (s *SavedRouteService) List(ctx context.Context, limit, offset int) ([]domain.SavedRoute, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	routes, err := s.routes.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.routes.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return routes, total, nil
}

// Nearby returns saved routes starting within radiusMeters of a point.
func (s *SavedRouteService) Nearby(ctx context.Context, at domain.GeoPoint, radiusMeters float64, limit int) ([]domain.SavedRoute, error) {
	if radiusMeters <= 0 || radiusMeters > 50000 {
		radiusMeters = 2000
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.routes.FindNearby(ctx, at.Lat, at.Lon, radiusMeters, limit)
}

// Get returns a single saved route.
func (s *SavedRouteService) Get(ctx context.Context, id string) (*domain.SavedRoute, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: route id is required", domain.ErrInvalidInput)
	}
	return s.routes.GetByID(ctx, id)
}

// Rename changes the display name of a saved route.
func (s *SavedRouteService) Rename(ctx context.Context, id, name string) (*domain.SavedRoute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}
	if len(name) > maxRouteNameLen {
		return nil, fmt.Errorf("%w: name longer than %d characters", domain.ErrInvalidInput, maxRouteNameLen)
	}
	if err := s.routes.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return s.routes.GetByID(ctx, id)
}

// Delete removes a saved route.
func (s *SavedRouteService) Delete(ctx context.Context, id string) error {
	return s.routes.Delete(ctx, id)
}

func publishRouteEvent(ctx context.Context, events ports.EventPublisher, evt *domain.RouteEvent) {
	if events == nil {
		return
	}
	if err := events.PublishRouteEvent(ctx, evt); err != nil {
		slog.WarnContext(ctx, "publish route event failed", "type", evt.Type, "error", err)
	}
}
