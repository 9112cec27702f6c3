package metrics

import (
	"context"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// SearchObserver records loop search attempts. It implements ports.SearchObserver.
type SearchObserver struct{}

func (SearchObserver) ObserveAttempt(_ context.Context, r domain.AttemptReport) {
	switch {
	case r.Err != nil:
		SearchAttempts.WithLabelValues("failed").Inc()
		return
	case r.Accepted:
		SearchAttempts.WithLabelValues("accepted").Inc()
	default:
		SearchAttempts.WithLabelValues("retried").Inc()
	}
	SearchDiffKm.Observe(r.DiffKm)
}

// CacheStats counts cache hits and misses by operation.
type CacheStats struct{}

func (CacheStats) CacheHit(op string)  { CacheHits.WithLabelValues(op).Inc() }
func (CacheStats) CacheMiss(op string) { CacheMisses.WithLabelValues(op).Inc() }

// RecordOptions records the outcome of one planning request.
func RecordOptions(n int, failReason string) {
	OptionsGenerated.Observe(float64(n))
	if failReason != "" {
		PlansFailed.WithLabelValues(failReason).Inc()
	}
}

// RecordRouteEvent counts a consumed route event.
func RecordRouteEvent(e *domain.RouteEvent) {
	RouteEventsConsumed.WithLabelValues(string(e.Type)).Inc()
	RouteDistanceKm.WithLabelValues(string(e.Type)).Observe(e.DistanceKm)
}
