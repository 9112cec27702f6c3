package gpx

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

const creator = "laufrunde"

// Encoder implements ports.TrackEncoder producing GPX 1.1 documents.
type Encoder struct{}

// NewEncoder creates a new GPX encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// EncodeTrack renders path as a single-segment track.
func (Encoder) EncodeTrack(name string, path []domain.GeoPoint) ([]byte, error) {
	seg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(path))}
	for _, p := range path {
		seg.Points = append(seg.Points, gpx.GPXPoint{
			Point: gpx.Point{Latitude: p.Lat, Longitude: p.Lon},
		})
	}

	doc := &gpx.GPX{
		Name:    name,
		Creator: creator,
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Type:     "running",
			Segments: []gpx.GPXTrackSegment{seg},
		}},
	}

	out, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encode gpx: %w", err)
	}
	return out, nil
}
