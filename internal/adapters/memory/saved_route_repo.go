package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/pkg/geospatial"
)

// pointTolerance gives indexed origins a non-degenerate rectangle.
const pointTolerance = 1e-7

type indexedRoute struct {
	id   string
	rect rtreego.Rect
}

func (r *indexedRoute) Bounds() rtreego.Rect { return r.rect }

// SavedRouteRepository implements ports.SavedRouteRepository in memory,
// with an R-tree over route origins for nearby lookups.
type SavedRouteRepository struct {
	mu      sync.RWMutex
	routes  map[string]domain.SavedRoute
	entries map[string]*indexedRoute
	tree    *rtreego.Rtree
}

// NewSavedRouteRepository creates an empty repository.
func NewSavedRouteRepository() *SavedRouteRepository {
	return &SavedRouteRepository{
		routes:  make(map[string]domain.SavedRoute),
		entries: make(map[string]*indexedRoute),
		tree:    rtreego.NewTree(2, 25, 50),
	}
}

// Create stores a new route.
func (r *SavedRouteRepository) Create(ctx context.Context, route *domain.SavedRoute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[route.ID]; ok {
		return fmt.Errorf("%w: route %s already exists", domain.ErrInvalidInput, route.ID)
	}

	entry := &indexedRoute{
		id:   route.ID,
		rect: rtreego.Point{route.Origin.Lat, route.Origin.Lon}.ToRect(pointTolerance),
	}
	r.routes[route.ID] = *route
	r.entries[route.ID] = entry
	r.tree.Insert(entry)
	return nil
}

// GetByID returns a route.
func (r *SavedRouteRepository) GetByID(ctx context.Context, id string) (*domain.SavedRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[id]
	if !ok {
		return nil, fmt.Errorf("%w: saved route %s", domain.ErrNotFound, id)
	}
	return &route, nil
}

// List returns routes newest first.
func (r *SavedRouteRepository) List(ctx context.Context, limit, offset int) ([]domain.SavedRoute, error) {
	r.mu.RLock()
	all := make([]domain.SavedRoute, 0, len(r.routes))
	for _, route := range r.routes {
		all = append(all, route)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []domain.SavedRoute{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Count returns the number of stored routes.
func (r *SavedRouteRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes), nil
}

// Rename changes a route's name.
func (r *SavedRouteRepository) Rename(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[id]
	if !ok {
		return fmt.Errorf("%w: saved route %s", domain.ErrNotFound, id)
	}
	route.Name = name
	r.routes[id] = route
	return nil
}

// Delete removes a route.
func (r *SavedRouteRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: saved route %s", domain.ErrNotFound, id)
	}
	r.tree.Delete(entry)
	delete(r.entries, id)
	delete(r.routes, id)
	return nil
}

// FindNearby returns routes whose origin is within radiusMeters, nearest first.
func (r *SavedRouteRepository) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.SavedRoute, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	minLat, maxLat = max(minLat, -90), min(maxLat, 90)

	// Boxes crossing the antimeridian are searched as two halves.
	var boxes []rtreego.Rect
	for _, lr := range geospatial.SplitLonRange(minLon, maxLon) {
		box, err := rtreego.NewRect(rtreego.Point{minLat, lr.Min}, []float64{maxLat - minLat, lr.Max - lr.Min})
		if err != nil {
			return nil, fmt.Errorf("%w: search box: %v", domain.ErrInvalidInput, err)
		}
		boxes = append(boxes, box)
	}

	type hit struct {
		route domain.SavedRoute
		dist  float64
	}

	r.mu.RLock()
	var hits []hit
	seen := make(map[string]bool)
	for _, box := range boxes {
		for _, s := range r.tree.SearchIntersect(box) {
			id := s.(*indexedRoute).id
			if seen[id] {
				continue
			}
			seen[id] = true
			route := r.routes[id]
			d := geospatial.Haversine(lat, lon, route.Origin.Lat, route.Origin.Lon)
			if d <= radiusMeters {
				hits = append(hits, hit{route: route, dist: d})
			}
		}
	}
	r.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]domain.SavedRoute, len(hits))
	for i, h := range hits {
		out[i] = h.route
	}
	return out, nil
}
