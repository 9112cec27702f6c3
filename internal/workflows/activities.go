package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// Activity names used by BookmarkWorkflow.
const (
	ActivityStoreRoute   = "StoreRoute"
	ActivityPublishSaved = "PublishRouteSaved"
	ActivityDeleteRoute  = "DeleteRoute"
)

// BookmarkActivities holds the activity implementations for the bookmark workflow.
type BookmarkActivities struct {
	Routes ports.SavedRouteRepository
	Events ports.EventPublisher // optional
}

// StoreRoute persists the route. A retry after a successful insert is a no-op.
func (a *BookmarkActivities) StoreRoute(ctx context.Context, route domain.SavedRoute) error {
	if _, err := a.Routes.GetByID(ctx, route.ID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup route %s: %w", route.ID, err)
	}
	if err := a.Routes.Create(ctx, &route); err != nil {
		return fmt.Errorf("store route %s: %w", route.ID, err)
	}
	return nil
}

// PublishRouteSaved announces the stored route on the event stream.
func (a *BookmarkActivities) PublishRouteSaved(ctx context.Context, route domain.SavedRoute) error {
	if a.Events == nil {
		slog.DebugContext(ctx, "no event publisher, skipping route.saved", "route_id", route.ID)
		return nil
	}
	return a.Events.PublishRouteEvent(ctx, &domain.RouteEvent{
		Type:       domain.RouteSavedType,
		RouteID:    route.ID,
		DistanceKm: route.DistanceKm,
		Origin:     route.Origin,
		OccurredAt: route.CreatedAt,
	})
}

// DeleteRoute removes a stored route (saga compensation).
func (a *BookmarkActivities) DeleteRoute(ctx context.Context, id string) error {
	if err := a.Routes.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete route %s: %w", id, err)
	}
	slog.InfoContext(ctx, "route deleted (saga compensation)", "route_id", id)
	return nil
}
