package usecases

import (
	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/pkg/geospatial"
)

// BuildLoopWaypoints places a loop of the given radius in the bearing
// direction from origin. It returns the loop center and the three corners
// visited after leaving origin, in route order.
func BuildLoopWaypoints(origin domain.GeoPoint, radiusKm, bearing float64) (domain.GeoPoint, [domain.WaypointCount]domain.GeoPoint) {
	center := project(origin, radiusKm, bearing)
	base := bearing + 180

	var wps [domain.WaypointCount]domain.GeoPoint
	for i := range wps {
		wps[i] = project(center, radiusKm, base+float64(i+1)*90)
	}
	return center, wps
}

// LoopSequence returns the closed waypoint sequence sent to the router.
func LoopSequence(origin domain.GeoPoint, wps [domain.WaypointCount]domain.GeoPoint) []domain.GeoPoint {
	seq := make([]domain.GeoPoint, 0, len(wps)+2)
	seq = append(seq, origin)
	seq = append(seq, wps[:]...)
	return append(seq, origin)
}

func project(p domain.GeoPoint, km, bearing float64) domain.GeoPoint {
	lat, lon := geospatial.Project(p.Lat, p.Lon, km, bearing)
	return domain.GeoPoint{Lat: lat, Lon: lon}
}
