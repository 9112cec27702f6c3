package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/laufrunde/internal/pkg/metrics"
)

const (
	requestTimeout     = 15 * time.Second
	defaultPlanTimeout = 60 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}
	planTimeout := deps.PlanTimeout
	if planTimeout <= 0 {
		planTimeout = defaultPlanTimeout
	}

	v1 := app.Group("/v1")

	// Planning sessions
	v1.Post("/plans", withTimeout(CreatePlanHandler(deps)))
	v1.Get("/plans/:id", withTimeout(GetPlanHandler(deps)))
	v1.Put("/plans/:id/input", withTimeout(UpdatePlanInputHandler(deps)))
	v1.Post("/plans/:id/generate", timeout.NewWithContext(GeneratePlanHandler(deps), planTimeout))
	v1.Post("/plans/:id/select", withTimeout(SelectOptionHandler(deps)))
	v1.Post("/plans/:id/confirm", withTimeout(ConfirmPlanHandler(deps)))
	v1.Post("/plans/:id/export", withTimeout(ExportPlanHandler(deps)))
	v1.Post("/plans/:id/reset", withTimeout(ResetPlanHandler(deps)))
	v1.Post("/plans/:id/save", withTimeout(SavePlanHandler(deps)))

	// Saved routes
	v1.Get("/routes", withTimeout(ListSavedRoutesHandler(deps)))
	v1.Get("/routes/nearby", withTimeout(NearbySavedRoutesHandler(deps)))
	v1.Get("/routes/:id", withTimeout(GetSavedRouteHandler(deps)))
	v1.Patch("/routes/:id", withTimeout(RenameSavedRouteHandler(deps)))
	v1.Delete("/routes/:id", withTimeout(DeleteSavedRouteHandler(deps)))
	v1.Get("/routes/:id/gpx", withTimeout(SavedRouteGPXHandler(deps)))
	v1.Get("/routes/:id/link", withTimeout(SavedRouteLinkHandler(deps)))
	v1.Post("/routes/:id/load", withTimeout(LoadSavedRouteHandler(deps)))

	// Start point helpers
	v1.Get("/weather", withTimeout(WeatherHandler(deps)))
	v1.Get("/places", withTimeout(SearchPlacesHandler(deps)))

	// GraphQL
	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultSpecPath)

	// WebSocket: live search progress and route events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
