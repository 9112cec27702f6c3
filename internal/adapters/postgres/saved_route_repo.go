package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/pkg/geospatial"
)

// SavedRouteRepo implements ports.SavedRouteRepository with pgx.
type SavedRouteRepo struct {
	db *DB
}

// NewSavedRouteRepo creates a new SavedRouteRepo.
func NewSavedRouteRepo(db *DB) *SavedRouteRepo {
	return &SavedRouteRepo{db: db}
}

const savedRouteColumns = `id, name, origin_lat, origin_lon, distance_km, path, waypoints, created_at`

// Create inserts a route.
func (r *SavedRouteRepo) Create(ctx context.Context, route *domain.SavedRoute) error {
	path, err := json.Marshal(route.Path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	waypoints, err := json.Marshal(route.Waypoints)
	if err != nil {
		return fmt.Errorf("encode waypoints: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO saved_routes (`+savedRouteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, route.ID, route.Name, route.Origin.Lat, route.Origin.Lon, route.DistanceKm,
		path, waypoints, route.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert saved route: %w", err)
	}
	return nil
}

// GetByID returns a route by ID.
func (r *SavedRouteRepo) GetByID(ctx context.Context, id string) (*domain.SavedRoute, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+savedRouteColumns+` FROM saved_routes WHERE id = $1`, id)
	route, err := scanSavedRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: saved route %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return route, nil
}

// List returns routes newest first.
func (r *SavedRouteRepo) List(ctx context.Context, limit, offset int) ([]domain.SavedRoute, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+savedRouteColumns+`
		FROM saved_routes
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSavedRoutes(rows)
}

// Count returns the number of saved routes.
func (r *SavedRouteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM saved_routes`).Scan(&n)
	return n, err
}

// Rename updates a route's name.
func (r *SavedRouteRepo) Rename(ctx context.Context, id, name string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE saved_routes SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: saved route %s", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes a route.
func (r *SavedRouteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM saved_routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: saved route %s", domain.ErrNotFound, id)
	}
	return nil
}

// FindNearby narrows candidates with a bounding box on the origin index and
// then filters by great-circle distance.
func (r *SavedRouteRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.SavedRoute, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	// A box crossing the antimeridian becomes two longitude ranges; otherwise
	// the single range is passed twice.
	lons := geospatial.SplitLonRange(minLon, maxLon)
	if len(lons) == 1 {
		lons = append(lons, lons[0])
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+savedRouteColumns+`
		FROM saved_routes
		WHERE origin_lat BETWEEN $1 AND $2
		  AND (origin_lon BETWEEN $3 AND $4 OR origin_lon BETWEEN $5 AND $6)
	`, minLat, maxLat, lons[0].Min, lons[0].Max, lons[1].Min, lons[1].Max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates, err := collectSavedRoutes(rows)
	if err != nil {
		return nil, err
	}

	dist := make(map[string]float64, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		d := geospatial.Haversine(lat, lon, c.Origin.Lat, c.Origin.Lon)
		if d <= radiusMeters {
			dist[c.ID] = d
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return dist[out[i].ID] < dist[out[j].ID] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func collectSavedRoutes(rows pgx.Rows) ([]domain.SavedRoute, error) {
	var routes []domain.SavedRoute
	for rows.Next() {
		route, err := scanSavedRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *route)
	}
	return routes, rows.Err()
}

func scanSavedRoute(row pgx.Row) (*domain.SavedRoute, error) {
	var (
		route           domain.SavedRoute
		path, waypoints []byte
	)
	if err := row.Scan(&route.ID, &route.Name, &route.Origin.Lat, &route.Origin.Lon,
		&route.DistanceKm, &path, &waypoints, &route.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(path, &route.Path); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	if err := json.Unmarshal(waypoints, &route.Waypoints); err != nil {
		return nil, fmt.Errorf("decode waypoints: %w", err)
	}
	return &route, nil
}
