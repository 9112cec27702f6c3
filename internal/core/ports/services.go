package ports

import (
	"context"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// RoutingClient snaps an ordered waypoint sequence onto the street network.
// It returns domain.ErrRoutingUnavailable when no path exists and
// domain.ErrServiceError for transport or protocol failures.
type RoutingClient interface {
	Route(ctx context.Context, waypoints []domain.GeoPoint, mode domain.TravelMode) (*domain.RoutedPath, error)
}

// SearchObserver is notified after every loop search attempt.
type SearchObserver interface {
	ObserveAttempt(ctx context.Context, report domain.AttemptReport)
}

// WeatherProvider fetches current weather.
type WeatherProvider interface {
	Current(ctx context.Context, at domain.GeoPoint) (*domain.Weather, error)
}

// Geocoder resolves free text to places.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Place, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRouteEvent(ctx context.Context, event *domain.RouteEvent) error
	PublishProgress(ctx context.Context, sessionID string, report domain.AttemptReport) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRouteEvents(ctx context.Context, handler func(ctx context.Context, event *domain.RouteEvent) error) error
}

// CacheService provides read-through caching.
// Get returns (nil, nil) on a miss.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// BookmarkScheduler hands a save request to a durable workflow engine.
type BookmarkScheduler interface {
	ScheduleBookmark(ctx context.Context, route domain.SavedRoute) error
}

// TrackEncoder renders a path as a track file (GPX).
type TrackEncoder interface {
	EncodeTrack(name string, path []domain.GeoPoint) ([]byte, error)
}
