package usecases

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// OptionBearings are the three search directions, in presentation order.
var OptionBearings = []float64{0, 120, 240}

// DefaultMaxAttempts bounds the retry loop of each direction.
const DefaultMaxAttempts = 3

// OptionService fans out one loop search per direction and joins the results.
type OptionService struct {
	searcher    *LoopSearcher
	maxAttempts int
}

// NewOptionService creates a new OptionService.
func NewOptionService(searcher *LoopSearcher, maxAttempts int) *OptionService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &OptionService{searcher: searcher, maxAttempts: maxAttempts}
}

// GenerateOptions returns up to three loop options around origin.
// It waits for every direction to finish and returns domain.ErrNoRouteFound
// when none produced a candidate.
func (s *OptionService) GenerateOptions(ctx context.Context, origin domain.GeoPoint, targetKm float64, observers ...ports.SearchObserver) ([]domain.RouteOption, error) {
	results := make([]*domain.LoopCandidate, len(OptionBearings))

	g, gctx := errgroup.WithContext(ctx)
	for i, bearing := range OptionBearings {
		g.Go(func() error {
			cand, err := s.searcher.Search(gctx, origin, targetKm, bearing, s.maxAttempts, observers...)
			if err != nil {
				return err
			}
			results[i] = cand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	options := make([]domain.RouteOption, 0, len(results))
	for i, cand := range results {
		if cand == nil {
			continue
		}
		options = append(options, domain.RouteOption{Candidate: *cand, Bearing: OptionBearings[i]})
	}
	if len(options) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	slog.InfoContext(ctx, "loop options generated",
		"origin_lat", origin.Lat, "origin_lon", origin.Lon,
		"target_km", targetKm, "options", len(options))
	return options, nil
}
