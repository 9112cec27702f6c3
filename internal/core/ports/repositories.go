package ports

import (
	"context"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// SavedRouteRepository persists confirmed loops the runner chose to keep.
type SavedRouteRepository interface {
	Create(ctx context.Context, route *domain.SavedRoute) error
	GetByID(ctx context.Context, id string) (*domain.SavedRoute, error)
	// List returns routes newest first.
	List(ctx context.Context, limit, offset int) ([]domain.SavedRoute, error)
	Count(ctx context.Context) (int, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	// FindNearby returns routes whose origin lies within radiusMeters of (lat, lon), nearest first.
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.SavedRoute, error)
}

// SessionStore holds planning sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.PlanSession, error)
	Put(ctx context.Context, session *domain.PlanSession) error
	Delete(ctx context.Context, id string) error
}
