package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// Client implements ports.WeatherProvider using the open-meteo forecast API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new open-meteo client.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
}

// Current returns the current weather at p.
func (c *Client) Current(ctx context.Context, p domain.GeoPoint) (*domain.Weather, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&current_weather=true", c.baseURL, p.Lat, p.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrServiceError, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: weather request: %v", domain.ErrServiceError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: weather service returned status %d", domain.ErrServiceError, resp.StatusCode)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("%w: decode weather: %v", domain.ErrServiceError, err)
	}
	if fr.CurrentWeather == nil {
		return nil, fmt.Errorf("%w: weather response has no current conditions", domain.ErrServiceError)
	}

	cw := fr.CurrentWeather
	observed, _ := time.Parse("2006-01-02T15:04", cw.Time)
	return &domain.Weather{
		Location:     p,
		TemperatureC: cw.Temperature,
		WindSpeedKmh: cw.WindSpeed,
		WeatherCode:  cw.WeatherCode,
		Condition:    domain.ClassifyWeatherCode(cw.WeatherCode),
		ObservedAt:   observed,
	}, nil
}
