package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/laufrunde/internal/adapters/gpx"
	"github.com/samirrijal/laufrunde/internal/adapters/http"
	"github.com/samirrijal/laufrunde/internal/adapters/memory"
	natsadapter "github.com/samirrijal/laufrunde/internal/adapters/nats"
	"github.com/samirrijal/laufrunde/internal/adapters/nominatim"
	"github.com/samirrijal/laufrunde/internal/adapters/openmeteo"
	"github.com/samirrijal/laufrunde/internal/adapters/osrm"
	"github.com/samirrijal/laufrunde/internal/adapters/postgres"
	"github.com/samirrijal/laufrunde/internal/adapters/valkey"
	"github.com/samirrijal/laufrunde/internal/core/ports"
	"github.com/samirrijal/laufrunde/internal/core/usecases"
	"github.com/samirrijal/laufrunde/internal/pkg/config"
	"github.com/samirrijal/laufrunde/internal/pkg/logging"
	"github.com/samirrijal/laufrunde/internal/pkg/metrics"
	"github.com/samirrijal/laufrunde/internal/pkg/telemetry"
	"github.com/samirrijal/laufrunde/internal/workflows"
)

func main() {
	cfg, err := config.Load("laufrunde-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Saved-route storage
	var (
		db     *postgres.DB
		routes ports.SavedRouteRepository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		routes = postgres.NewSavedRouteRepo(db)
		go reportPoolStats(ctx, db)
	default:
		slog.Warn("using in-memory storage, saved routes are lost on restart")
		routes = memory.NewSavedRouteRepository()
	}

	// Cache
	var (
		cache     *valkey.Cache
		cachePort ports.CacheService
	)
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
		if err != nil {
			slog.Warn("valkey unavailable, caching disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			cachePort = cache
		}
	}

	// NATS
	var (
		events   ports.EventPublisher
		natsConn *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	// Temporal
	var scheduler ports.BookmarkScheduler
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			slog.Warn("temporal unavailable, saving routes directly", "error", err)
		} else {
			defer tc.Close()
			scheduler = workflows.NewScheduler(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Routing
	var router ports.RoutingClient = osrm.New(cfg.Routing.BaseURL, time.Duration(cfg.Routing.TimeoutSeconds)*time.Second)
	if cachePort != nil {
		router = usecases.NewCachingRouter(router, cachePort, cfg.Routing.CacheTTLSeconds, metrics.CacheStats{})
	}

	// Use cases
	searcher := usecases.NewLoopSearcher(router, usecases.SearchConfig{
		WindingFactor: cfg.Routing.WindingFactor,
		JitterMin:     cfg.Routing.JitterMin,
		JitterMax:     cfg.Routing.JitterMax,
		CallTimeout:   time.Duration(cfg.Routing.TimeoutSeconds) * time.Second,
	}, usecases.WithObservers(metrics.SearchObserver{}))
	optionSvc := usecases.NewOptionService(searcher, cfg.Routing.MaxAttempts)
	exportSvc := usecases.NewExportService(gpx.NewEncoder())
	savedSvc := usecases.NewSavedRouteService(routes, events, scheduler)
	plannerSvc := usecases.NewPlannerService(memory.NewSessionStore(), optionSvc, exportSvc, savedSvc, events)
	weatherSvc := usecases.NewWeatherService(
		openmeteo.New(cfg.Weather.BaseURL, 5*time.Second), cachePort, cfg.Weather.CacheTTLSeconds)
	placeSvc := usecases.NewPlaceService(
		nominatim.New(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, 5*time.Second), cachePort)

	deps := &http.Dependencies{
		Planner:     plannerSvc,
		Saved:       savedSvc,
		Export:      exportSvc,
		Weather:     weatherSvc,
		Places:      placeSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
		PlanTimeout: time.Duration(cfg.Server.PlanTimeout) * time.Second,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "LaufRunde API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, Link, Location, X-Total-Count",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Searches can take a while; give in-flight requests up to the plan timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), deps.PlanTimeout+5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats exports pgx pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
