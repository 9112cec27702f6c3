package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// Client implements ports.RoutingClient against an OSRM HTTP server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new OSRM client. The per-call deadline comes from the
// request context; timeout only guards against a missing one.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient is New with a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route snaps the waypoint sequence to the street network.
func (c *Client) Route(ctx context.Context, waypoints []domain.GeoPoint, mode domain.TravelMode) (*domain.RoutedPath, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 waypoints, got %d", domain.ErrInvalidInput, len(waypoints))
	}

	coords := make([]string, len(waypoints))
	for i, p := range waypoints {
		coords[i] = fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson&continue_straight=true",
		c.baseURL, mode, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrServiceError, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: osrm request: %v", domain.ErrServiceError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read osrm response: %v", domain.ErrServiceError, err)
	}

	var rr routeResponse
	decodeErr := json.Unmarshal(body, &rr)

	// OSRM answers "no route" with 400 and a code in the body.
	if decodeErr == nil && isNoRoute(rr.Code) {
		return nil, fmt.Errorf("%w: osrm %s: %s", domain.ErrRoutingUnavailable, rr.Code, rr.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: osrm returned status %d", domain.ErrServiceError, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode osrm response: %v", domain.ErrServiceError, decodeErr)
	}
	if rr.Code != "Ok" {
		return nil, fmt.Errorf("%w: osrm code %q: %s", domain.ErrServiceError, rr.Code, rr.Message)
	}
	if len(rr.Routes) == 0 {
		return nil, fmt.Errorf("%w: osrm returned no routes", domain.ErrRoutingUnavailable)
	}

	route := rr.Routes[0]
	path := &domain.RoutedPath{
		Coordinates:    make([]domain.GeoPoint, 0, len(route.Geometry.Coordinates)),
		DistanceMeters: route.Distance,
	}
	for _, pt := range route.Geometry.Coordinates {
		if len(pt) < 2 {
			continue
		}
		path.Coordinates = append(path.Coordinates, domain.GeoPoint{Lat: pt[1], Lon: pt[0]})
	}
	return path, nil
}

func isNoRoute(code string) bool {
	return code == "NoRoute" || code == "NoSegment"
}
