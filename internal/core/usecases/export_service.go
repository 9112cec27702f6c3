package usecases

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

const (
	mapsDirectionsURL = "https://www.google.com/maps/dir/"
	whatsAppShareURL  = "https://wa.me/"
)

// ExportService hands confirmed loops to external apps.
type ExportService struct {
	tracks ports.TrackEncoder
}

// NewExportService creates a new ExportService.
func NewExportService(tracks ports.TrackEncoder) *ExportService {
	return &ExportService{tracks: tracks}
}

// Link builds a walking-directions URL that starts and ends at origin and
// passes through the three loop corners, plus share text for messaging apps.
func (s *ExportService) Link(name string, origin domain.GeoPoint, waypoints []domain.GeoPoint, distanceKm float64) (*domain.ExportLink, error) {
	if len(waypoints) != domain.WaypointCount {
		return nil, fmt.Errorf("%w: export needs exactly %d waypoints, got %d",
			domain.ErrPrecondition, domain.WaypointCount, len(waypoints))
	}

	corners := make([]string, len(waypoints))
	for i, wp := range waypoints {
		corners[i] = latLon(wp)
	}

	link := fmt.Sprintf("%s?api=1&origin=%s&destination=%s&waypoints=%s&travelmode=walking",
		mapsDirectionsURL, latLon(origin), latLon(origin), strings.Join(corners, "%7C"))

	if strings.TrimSpace(name) == "" {
		name = "Running loop"
	}
	text := fmt.Sprintf("%s (%.1fkm)\n%s", name, distanceKm, link)

	return &domain.ExportLink{
		URL:       link,
		ShareText: text,
		ShareURL:  whatsAppShareURL + "?text=" + url.QueryEscape(text),
	}, nil
}

// RouteLink is Link for a saved route.
func (s *ExportService) RouteLink(route *domain.SavedRoute) (*domain.ExportLink, error) {
	return s.Link(route.Name, route.Origin, route.Waypoints, route.DistanceKm)
}

// GPX renders the saved route as a GPX track.
func (s *ExportService) GPX(route *domain.SavedRoute) ([]byte, error) {
	if len(route.Path) < 2 {
		return nil, fmt.Errorf("%w: route has no path to export", domain.ErrPrecondition)
	}
	return s.tracks.EncodeTrack(route.Name, route.Path)
}

func latLon(p domain.GeoPoint) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}
