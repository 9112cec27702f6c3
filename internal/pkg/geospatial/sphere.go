// Package geospatial holds the spherical-earth math used to place loop
// waypoints and to measure paths.
package geospatial

import "math"

// EarthRadiusKm is the mean radius of the sphere every calculation assumes.
const EarthRadiusKm = 6371.0

// metersPerDegreeLat approximates one degree of latitude.
const metersPerDegreeLat = 111320.0

// Project returns the point reached by travelling distanceKm from (lat, lon)
// along the initial bearing bearingDeg (0 = north, clockwise) on a sphere.
// Bearings outside [0, 360) are accepted as-is.
func Project(lat, lon, distanceKm, bearingDeg float64) (float64, float64) {
	lat1 := toRad(lat)
	lon1 := toRad(lon)
	brng := toRad(bearingDeg)
	d := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return toDeg(lat2), toDeg(lon2)
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	sinLat := math.Sin(toRad(lat2-lat1) / 2)
	sinLon := math.Sin(toRad(lon2-lon1) / 2)

	a := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon
	return 2 * EarthRadiusKm * 1000 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// PathLengthKm sums the great-circle length of a polyline given as
// parallel lat/lon slices.
func PathLengthKm(lats, lons []float64) float64 {
	n := min(len(lats), len(lons))
	var meters float64
	for i := 1; i < n; i++ {
		meters += Haversine(lats[i-1], lons[i-1], lats[i], lons[i])
	}
	return meters / 1000
}

// BoundingBox returns the lat/lon box enclosing a circle of radiusMeters
// around (lat, lon). Used to pre-filter nearby searches before the exact
// distance check.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDegreeLat
	lonDelta := radiusMeters / (metersPerDegreeLat * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// LonRange is a closed longitude interval with Min <= Max.
type LonRange struct{ Min, Max float64 }

// SplitLonRange normalises the longitude span [minLon, maxLon] of a bounding
// box into at most two intervals inside [-180, 180], splitting it where it
// crosses the antimeridian.
func SplitLonRange(minLon, maxLon float64) []LonRange {
	if maxLon-minLon >= 360 || math.IsNaN(maxLon-minLon) {
		return []LonRange{{-180, 180}}
	}
	switch {
	case minLon < -180:
		return []LonRange{{minLon + 360, 180}, {-180, maxLon}}
	case maxLon > 180:
		return []LonRange{{minLon, 180}, {-180, maxLon - 360}}
	}
	return []LonRange{{minLon, maxLon}}
}
