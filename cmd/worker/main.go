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
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/laufrunde/internal/adapters/nats"
	"github.com/samirrijal/laufrunde/internal/adapters/postgres"
	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
	"github.com/samirrijal/laufrunde/internal/pkg/config"
	"github.com/samirrijal/laufrunde/internal/pkg/logging"
	"github.com/samirrijal/laufrunde/internal/pkg/metrics"
	"github.com/samirrijal/laufrunde/internal/workflows"
)

// The worker runs the bookmark saga and consumes route events for
// analytics. Either half can be disabled through config.
func main() {
	cfg, err := config.Load("laufrunde-worker")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, "laufrunde-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.Temporal.Enabled && !cfg.NATS.Enabled {
		log.Fatal("nothing to do: enable temporal and/or nats")
	}

	// Route event publisher, shared by the saga activities
	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats publisher unavailable, saved events will not be published", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.Worker.Durable)
		if err != nil {
			log.Fatalf("nats subscriber: %v", err)
		}
		defer sub.Close()

		err = sub.SubscribeRouteEvents(ctx, func(_ context.Context, e *domain.RouteEvent) error {
			metrics.RecordRouteEvent(e)
			slog.Debug("route event", "type", e.Type, "route_id", e.RouteID)
			return nil
		})
		if err != nil {
			log.Fatalf("subscribe route events: %v", err)
		}
		slog.Info("consuming route events", "durable", cfg.Worker.Durable)
	}

	// Temporal bookmark worker
	var w worker.Worker
	if cfg.Temporal.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			log.Fatalf("temporal client: %v", err)
		}
		defer tc.Close()

		w = worker.New(tc, cfg.Temporal.TaskQueue, worker.Options{})
		w.RegisterWorkflow(workflows.BookmarkWorkflow)
		w.RegisterActivity(&workflows.BookmarkActivities{
			Routes: postgres.NewSavedRouteRepo(db),
			Events: events,
		})
		if err := w.Start(); err != nil {
			log.Fatalf("temporal worker: %v", err)
		}
		defer w.Stop()
		slog.Info("bookmark worker started", "task_queue", cfg.Temporal.TaskQueue)
	}

	// Metrics endpoint
	app := fiber.New(fiber.Config{
		AppName:               "LaufRunde Worker",
		DisableStartupMessage: true,
	})
	app.Get("/metrics", metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		if err := app.Listen(addr); err != nil {
			slog.Error("metrics listener stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down worker", "signal", sig.String())

	cancel()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		slog.Error("metrics shutdown", "error", err)
	}
}
