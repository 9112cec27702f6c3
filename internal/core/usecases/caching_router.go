package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// CacheStats is notified of cache hits and misses.
type CacheStats interface {
	CacheHit(kind string)
	CacheMiss(kind string)
}

// CachingRouter stores successful routing responses so that repeated
// searches from the same start point skip the external service.
type CachingRouter struct {
	next       ports.RoutingClient
	cache      ports.CacheService
	ttlSeconds int
	stats      CacheStats
}

// NewCachingRouter wraps next. A nil cache disables caching.
func NewCachingRouter(next ports.RoutingClient, cache ports.CacheService, ttlSeconds int, stats CacheStats) *CachingRouter {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &CachingRouter{next: next, cache: cache, ttlSeconds: ttlSeconds, stats: stats}
}

// Route implements ports.RoutingClient.
func (r *CachingRouter) Route(ctx context.Context, waypoints []domain.GeoPoint, mode domain.TravelMode) (*domain.RoutedPath, error) {
	if r.cache == nil {
		return r.next.Route(ctx, waypoints, mode)
	}

	key := routeCacheKey(waypoints, mode)
	if data, err := r.cache.Get(ctx, key); err == nil && data != nil {
		var path domain.RoutedPath
		if err := json.Unmarshal(data, &path); err == nil {
			r.hit("route")
			return &path, nil
		}
	}
	r.miss("route")

	path, err := r.next.Route(ctx, waypoints, mode)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(path); err == nil {
		_ = r.cache.Set(ctx, key, data, r.ttlSeconds)
	}
	return path, nil
}

func (r *CachingRouter) hit(kind string) {
	if r.stats != nil {
		r.stats.CacheHit(kind)
	}
}

func (r *CachingRouter) miss(kind string) {
	if r.stats != nil {
		r.stats.CacheMiss(kind)
	}
}

// routeCacheKey rounds coordinates to 5 decimals (about one metre).
func routeCacheKey(waypoints []domain.GeoPoint, mode domain.TravelMode) string {
	var b strings.Builder
	b.WriteString("route:")
	b.WriteString(string(mode))
	for _, p := range waypoints {
		fmt.Fprintf(&b, ":%.5f,%.5f", p.Lat, p.Lon)
	}
	return b.String()
}
