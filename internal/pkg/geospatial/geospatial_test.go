package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Two points in central Bilbao, a few hundred metres apart.
	d := Haversine(43.2614, -2.9253, 43.2590, -2.9230)
	if d < 250 || d > 450 {
		t.Fatalf("unexpected distance %.1f m", d)
	}
	if Haversine(52.52, 13.405, 52.52, 13.405) != 0 {
		t.Fatal("distance to self must be zero")
	}
}

func TestProject_Deterministic(t *testing.T) {
	lat1, lon1 := Project(52.52, 13.405, 1.2, 37)
	lat2, lon2 := Project(52.52, 13.405, 1.2, 37)
	if lat1 != lat2 || lon1 != lon2 {
		t.Fatalf("non-deterministic: (%v,%v) vs (%v,%v)", lat1, lon1, lat2, lon2)
	}
}

func TestProject_RoundTrip(t *testing.T) {
	cases := []struct {
		lat, lon, km, brng float64
	}{
		{52.52, 13.405, 1.0, 0},
		{52.52, 13.405, 0.7, 120},
		{43.26, -2.93, 3.5, 240},
		{-33.86, 151.21, 2.0, 405},
		{0, 0, 5, -90},
	}
	for _, tc := range cases {
		lat, lon := Project(tc.lat, tc.lon, tc.km, tc.brng)
		backLat, backLon := Project(lat, lon, tc.km, tc.brng+180)
		if math.Abs(backLat-tc.lat) > 1e-6 || math.Abs(backLon-tc.lon) > 1e-6 {
			t.Errorf("round trip from (%v,%v) bearing %v: got (%v,%v)", tc.lat, tc.lon, tc.brng, backLat, backLon)
		}
	}
}

func TestProject_DistanceMatchesHaversine(t *testing.T) {
	lat, lon := Project(52.52, 13.405, 2.0, 75)
	got := Haversine(52.52, 13.405, lat, lon) / 1000
	if math.Abs(got-2.0) > 1e-6 {
		t.Fatalf("expected 2 km, got %v", got)
	}
}

func TestProject_North(t *testing.T) {
	lat, lon := Project(0, 0, 111.19492664455873, 0)
	if math.Abs(lat-1) > 1e-9 || math.Abs(lon) > 1e-9 {
		t.Fatalf("expected (1,0), got (%v,%v)", lat, lon)
	}
}

func TestPathLengthKm(t *testing.T) {
	if PathLengthKm(nil, nil) != 0 {
		t.Fatal("empty path must have zero length")
	}
	lat1, lon1 := Project(52.52, 13.405, 1, 90)
	lat2, lon2 := Project(lat1, lon1, 1, 90)
	got := PathLengthKm([]float64{52.52, lat1, lat2}, []float64{13.405, lon1, lon2})
	if math.Abs(got-2) > 1e-6 {
		t.Fatalf("expected 2 km, got %v", got)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(52.52, 13.405, 1000)
	lat, lon := Project(52.52, 13.405, 0.99, 45)
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		t.Fatalf("point %v,%v outside box", lat, lon)
	}
}

func TestSplitLonRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     []LonRange
	}{
		{"inside", 10, 20, []LonRange{{10, 20}}},
		{"crosses east", 179.5, 180.5, []LonRange{{179.5, 180}, {-180, -179.5}}},
		{"crosses west", -180.25, -179.75, []LonRange{{179.75, 180}, {-180, -179.75}}},
		{"whole world", -200, 200, []LonRange{{-180, 180}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLonRange(tt.min, tt.max)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i].Min-tt.want[i].Min) > 1e-9 || math.Abs(got[i].Max-tt.want[i].Max) > 1e-9 {
					t.Errorf("range %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
