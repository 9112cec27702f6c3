package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// PlaceService resolves free-text start locations.
type PlaceService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(geocoder ports.Geocoder, cache ports.CacheService) *PlaceService {
	return &PlaceService{geocoder: geocoder, cache: cache}
}

// Search returns places matching query.
func (s *PlaceService) Search(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be empty", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	cacheKey := fmt.Sprintf("places:%s:%d", strings.ToLower(query), limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var places []domain.Place
			if err := json.Unmarshal(data, &places); err == nil {
				return places, nil
			}
		}
	}

	places, err := s.geocoder.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	// Place names change rarely; keep them for a day.
	if s.cache != nil {
		if data, err := json.Marshal(places); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 86400)
		}
	}
	return places, nil
}
