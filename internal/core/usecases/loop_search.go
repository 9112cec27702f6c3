package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

const (
	// EarlyAcceptKm stops the search as soon as a candidate is this close to the target.
	EarlyAcceptKm = 0.5

	minCorrection = 0.6
	maxCorrection = 1.4
)

// RandSource yields uniform values in [0, 1).
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// SearchConfig tunes the precision search.
type SearchConfig struct {
	WindingFactor float64
	JitterMin     float64
	JitterMax     float64
	CallTimeout   time.Duration
}

// DefaultSearchConfig returns the values used when nothing is configured.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		WindingFactor: 1.3,
		JitterMin:     0.90,
		JitterMax:     1.10,
		CallTimeout:   10 * time.Second,
	}
}

// LoopSearcher runs the bounded radius search for one direction.
type LoopSearcher struct {
	router    ports.RoutingClient
	cfg       SearchConfig
	rand      RandSource
	observers []ports.SearchObserver
	tracer    trace.Tracer
}

// SearchOption configures a LoopSearcher.
type SearchOption func(*LoopSearcher)

// WithRandSource replaces the jitter source. Concurrent searches share the
// searcher, so r is serialised behind a mutex; it need not be goroutine-safe.
func WithRandSource(r RandSource) SearchOption {
	return func(s *LoopSearcher) { s.rand = &lockedRand{src: r} }
}

type lockedRand struct {
	mu  sync.Mutex
	src RandSource
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// WithObservers registers observers notified after every attempt.
func WithObservers(obs ...ports.SearchObserver) SearchOption {
	return func(s *LoopSearcher) { s.observers = append(s.observers, obs...) }
}

// WithTracer sets the tracer used for attempt spans.
func WithTracer(t trace.Tracer) SearchOption {
	return func(s *LoopSearcher) { s.tracer = t }
}

// NewLoopSearcher creates a new LoopSearcher. Zero config fields fall back to defaults.
func NewLoopSearcher(router ports.RoutingClient, cfg SearchConfig, opts ...SearchOption) *LoopSearcher {
	def := DefaultSearchConfig()
	if cfg.WindingFactor <= 0 {
		cfg.WindingFactor = def.WindingFactor
	}
	if cfg.JitterMin <= 0 || cfg.JitterMax < cfg.JitterMin {
		cfg.JitterMin, cfg.JitterMax = def.JitterMin, def.JitterMax
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}

	s := &LoopSearcher{
		router: router,
		cfg:    cfg,
		rand:   globalRand{},
		tracer: otel.Tracer("github.com/samirrijal/laufrunde/usecases"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// InitialRadiusKm is the radius of the first attempt for a target distance.
func (s *LoopSearcher) InitialRadiusKm(targetKm float64) float64 {
	return (targetKm / s.cfg.WindingFactor) / (2 * math.Pi)
}

// Search looks for a loop of targetKm heading out along bearing.
// It returns the best candidate found, or nil when every attempt failed.
// An error is returned only for invalid arguments or a cancelled ctx.
func (s *LoopSearcher) Search(ctx context.Context, origin domain.GeoPoint, targetKm, bearing float64, maxAttempts int, extra ...ports.SearchObserver) (*domain.LoopCandidate, error) {
	if targetKm <= 0 || math.IsNaN(targetKm) || math.IsInf(targetKm, 0) {
		return nil, fmt.Errorf("%w: target distance must be positive, got %v", domain.ErrInvalidInput, targetKm)
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", domain.ErrInvalidInput, maxAttempts)
	}

	radius := s.InitialRadiusKm(targetKm)
	var best *domain.LoopCandidate
	bestDiff := math.Inf(1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 1 {
			radius *= s.cfg.JitterMin + s.rand.Float64()*(s.cfg.JitterMax-s.cfg.JitterMin)
		}

		report := domain.AttemptReport{Bearing: bearing, Attempt: attempt, RadiusKm: radius}
		cand, err := s.attempt(ctx, origin, radius, bearing, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			report.Err = err
			report.Error = err.Error()
			slog.WarnContext(ctx, "loop attempt failed",
				"bearing", bearing, "attempt", attempt, "radius_km", radius, "error", err)
			s.notify(ctx, report, extra)
			continue
		}

		diff := math.Abs(cand.ActualKm - targetKm)
		if diff < bestDiff {
			best, bestDiff = cand, diff
		}
		report.ActualKm = cand.ActualKm
		report.DiffKm = diff
		report.Accepted = diff <= EarlyAcceptKm
		slog.DebugContext(ctx, "loop attempt",
			"bearing", bearing, "attempt", attempt, "radius_km", radius,
			"actual_km", cand.ActualKm, "diff_km", diff)
		s.notify(ctx, report, extra)

		if report.Accepted {
			return cand, nil
		}
		radius *= clamp(targetKm/cand.ActualKm, minCorrection, maxCorrection)
	}

	return best, nil
}

func (s *LoopSearcher) attempt(ctx context.Context, origin domain.GeoPoint, radius, bearing float64, n int) (*domain.LoopCandidate, error) {
	ctx, span := s.tracer.Start(ctx, "loop.attempt", trace.WithAttributes(
		attribute.Float64("loop.bearing", bearing),
		attribute.Int("loop.attempt", n),
		attribute.Float64("loop.radius_km", radius),
	))
	defer span.End()

	_, wps := BuildLoopWaypoints(origin, radius, bearing)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	routed, err := s.router.Route(callCtx, LoopSequence(origin, wps), domain.TravelModeFoot)
	if err == nil && routed == nil {
		err = fmt.Errorf("%w: empty routing response", domain.ErrServiceError)
	}
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, domain.ErrServiceError) {
			err = fmt.Errorf("%w: routing call timed out after %s", domain.ErrServiceError, s.cfg.CallTimeout)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cand := &domain.LoopCandidate{
		Waypoints: wps[:],
		Path:      pinToOrigin(origin, routed.Coordinates),
		ActualKm:  routed.DistanceMeters / 1000,
		RadiusKm:  radius,
	}
	span.SetAttributes(attribute.Float64("loop.actual_km", cand.ActualKm))
	return cand, nil
}

func (s *LoopSearcher) notify(ctx context.Context, report domain.AttemptReport, extra []ports.SearchObserver) {
	for _, o := range s.observers {
		o.ObserveAttempt(ctx, report)
	}
	for _, o := range extra {
		o.ObserveAttempt(ctx, report)
	}
}

// pinToOrigin makes the path start and end exactly at origin.
func pinToOrigin(origin domain.GeoPoint, coords []domain.GeoPoint) []domain.GeoPoint {
	path := make([]domain.GeoPoint, 0, len(coords)+2)
	if len(coords) == 0 || coords[0] != origin {
		path = append(path, origin)
	}
	path = append(path, coords...)
	if path[len(path)-1] != origin {
		path = append(path, origin)
	}
	return path
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return hi
	}
	return math.Max(lo, math.Min(hi, v))
}
