package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// WeatherService reports current conditions at a start point.
type WeatherService struct {
	provider   ports.WeatherProvider
	cache      ports.CacheService
	ttlSeconds int
}

// NewWeatherService creates a new WeatherService.
func NewWeatherService(provider ports.WeatherProvider, cache ports.CacheService, ttlSeconds int) *WeatherService {
	if ttlSeconds <= 0 {
		ttlSeconds = 600
	}
	return &WeatherService{provider: provider, cache: cache, ttlSeconds: ttlSeconds}
}

// Current returns the weather at p. Nearby points share a cache entry.
func (s *WeatherService) Current(ctx context.Context, p domain.GeoPoint) (*domain.Weather, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("weather:%.2f:%.2f", p.Lat, p.Lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var w domain.Weather
			if err := json.Unmarshal(data, &w); err == nil {
				return &w, nil
			}
		}
	}

	w, err := s.provider.Current(ctx, p)
	if err != nil {
		return nil, err
	}
	w.Condition = domain.ClassifyWeatherCode(w.WeatherCode)

	if s.cache != nil {
		if data, err := json.Marshal(w); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttlSeconds)
		}
	}
	return w, nil
}
