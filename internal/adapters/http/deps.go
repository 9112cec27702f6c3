package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/laufrunde/internal/adapters/postgres"
	"github.com/samirrijal/laufrunde/internal/adapters/valkey"
	"github.com/samirrijal/laufrunde/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Planner *usecases.PlannerService
	Saved   *usecases.SavedRouteService
	Export  *usecases.ExportService
	Weather *usecases.WeatherService
	Places  *usecases.PlaceService

	// Optional infrastructure, nil when not configured.
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache

	// PlanTimeout bounds option generation requests. Defaults to 60s.
	PlanTimeout time.Duration
}
