package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/pkg/geospatial"
)

func TestSessionStore_CopiesValues(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	s := domain.NewPlanSession("s1", domain.GeoPoint{Lat: 1, Lon: 2}, 5)

	if err := store.Put(ctx, &s); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.TargetKm = 99

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TargetKm != 5 {
		t.Fatalf("store must keep its own copy, got %v", got.TargetKm)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = store.Delete(ctx, "s1")
	if store.Len() != 0 {
		t.Fatal("expected empty store after delete")
	}
}

func saved(id string, origin domain.GeoPoint, at time.Time) *domain.SavedRoute {
	return &domain.SavedRoute{ID: id, Name: id, Origin: origin, CreatedAt: at, DistanceKm: 5}
}

func TestSavedRouteRepository_ListNewestFirst(t *testing.T) {
	repo := NewSavedRouteRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, saved(id, domain.GeoPoint{Lat: 52.52, Lon: 13.4}, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, _ := repo.List(ctx, 2, 0)
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("unexpected first page %+v", page)
	}
	page, _ = repo.List(ctx, 2, 2)
	if len(page) != 1 || page[0].ID != "a" {
		t.Fatalf("unexpected second page %+v", page)
	}
	if n, _ := repo.Count(ctx); n != 3 {
		t.Fatalf("expected 3 routes, got %d", n)
	}
}

func TestSavedRouteRepository_RenameDelete(t *testing.T) {
	repo := NewSavedRouteRepository()
	ctx := context.Background()
	_ = repo.Create(ctx, saved("a", domain.GeoPoint{Lat: 52.52, Lon: 13.4}, time.Now()))

	if err := repo.Rename(ctx, "a", "River"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, _ := repo.GetByID(ctx, "a")
	if got.Name != "River" {
		t.Fatalf("expected River, got %s", got.Name)
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	near, _ := repo.FindNearby(ctx, 52.52, 13.4, 1000, 10)
	if len(near) != 0 {
		t.Fatal("deleted route still indexed")
	}
}

func TestSavedRouteRepository_FindNearby(t *testing.T) {
	repo := NewSavedRouteRepository()
	ctx := context.Background()
	center := domain.GeoPoint{Lat: 52.52, Lon: 13.405}
	at := func(km, brng float64) domain.GeoPoint {
		lat, lon := geospatial.Project(center.Lat, center.Lon, km, brng)
		return domain.GeoPoint{Lat: lat, Lon: lon}
	}

	_ = repo.Create(ctx, saved("far", at(5, 0), time.Now()))
	_ = repo.Create(ctx, saved("mid", at(1.5, 90), time.Now()))
	_ = repo.Create(ctx, saved("near", at(0.3, 200), time.Now()))
	// Inside the bounding box corner but outside the radius.
	_ = repo.Create(ctx, saved("corner", at(2.6, 45), time.Now()))

	got, err := repo.FindNearby(ctx, center.Lat, center.Lon, 2000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "near" || got[1].ID != "mid" {
		ids := make([]string, len(got))
		for i, r := range got {
			ids[i] = r.ID
		}
		t.Fatalf("expected [near mid], got %v", ids)
	}

	got, _ = repo.FindNearby(ctx, center.Lat, center.Lon, 2000, 1)
	if len(got) != 1 {
		t.Fatalf("limit not applied, got %d", len(got))
	}
}

func TestSavedRouteRepository_FindNearbyAcrossAntimeridian(t *testing.T) {
	repo := NewSavedRouteRepository()
	ctx := context.Background()

	// Taveuni, Fiji straddles 180°.
	east := domain.GeoPoint{Lat: -16.8, Lon: 179.995}
	west := domain.GeoPoint{Lat: -16.8, Lon: -179.995}
	_ = repo.Create(ctx, saved("west", west, time.Now()))

	got, err := repo.FindNearby(ctx, east.Lat, east.Lon, 3000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "west" {
		t.Fatalf("expected the route across the antimeridian, got %+v", got)
	}

	got, err = repo.FindNearby(ctx, west.Lat, west.Lon, 3000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the route from its own side, got %d", len(got))
	}
}
