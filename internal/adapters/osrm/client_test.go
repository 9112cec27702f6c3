package osrm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

var loop = []domain.GeoPoint{
	{Lat: 52.52, Lon: 13.405},
	{Lat: 52.525, Lon: 13.40},
	{Lat: 52.53, Lon: 13.405},
	{Lat: 52.525, Lon: 13.41},
	{Lat: 52.52, Lon: 13.405},
}

func TestRoute_Success(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":5234.5,"geometry":{"type":"LineString","coordinates":[[13.405,52.52],[13.40,52.525],[13.405,52.52]]}}]}`))
	}))
	defer srv.Close()

	path, err := New(srv.URL, 0).Route(context.Background(), loop, domain.TravelModeFoot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/route/v1/foot/13.405000,52.520000;13.400000,52.525000;") {
		t.Fatalf("unexpected path %s", gotPath)
	}
	for _, want := range []string{"overview=full", "geometries=geojson", "continue_straight=true"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %s", gotQuery, want)
		}
	}
	if path.DistanceMeters != 5234.5 || len(path.Coordinates) != 3 {
		t.Fatalf("unexpected path %+v", path)
	}
	if path.Coordinates[1] != (domain.GeoPoint{Lat: 52.525, Lon: 13.40}) {
		t.Fatalf("coordinates must be converted from lon,lat: %+v", path.Coordinates[1])
	}
}

func TestRoute_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no route", http.StatusBadRequest, `{"code":"NoRoute","message":"Impossible route"}`, domain.ErrRoutingUnavailable},
		{"no segment", http.StatusBadRequest, `{"code":"NoSegment","message":"Could not find a matching segment"}`, domain.ErrRoutingUnavailable},
		{"empty routes", http.StatusOK, `{"code":"Ok","routes":[]}`, domain.ErrRoutingUnavailable},
		{"server error", http.StatusBadGateway, `upstream down`, domain.ErrServiceError},
		{"garbage", http.StatusOK, `not json`, domain.ErrServiceError},
		{"too big", http.StatusBadRequest, `{"code":"TooBig"}`, domain.ErrServiceError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, 0).Route(context.Background(), loop, domain.TravelModeFoot)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRoute_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, 0).Route(context.Background(), loop, domain.TravelModeFoot)
	if !errors.Is(err, domain.ErrServiceError) {
		t.Fatalf("expected ErrServiceError, got %v", err)
	}
}

func TestRoute_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, 0).Route(ctx, loop, domain.TravelModeFoot)
	if !errors.Is(err, domain.ErrServiceError) {
		t.Fatalf("expected ErrServiceError, got %v", err)
	}
}
