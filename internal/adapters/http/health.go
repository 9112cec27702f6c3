package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

const readyTimeout = 3 * time.Second

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		})
	}
}

// probe checks one backing service. A nil probe means the service is not
// configured for this deployment.
type probe func(ctx context.Context) error

func readinessProbes(deps *Dependencies) map[string]probe {
	probes := map[string]probe{"database": nil, "nats": nil, "cache": nil}
	if deps.DB != nil {
		probes["database"] = deps.DB.Ping
	}
	if deps.NATS != nil {
		probes["nats"] = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}
	}
	if deps.Cache != nil {
		probes["cache"] = deps.Cache.Ping
	}
	return probes
}

// ReadyHandler checks the configured backing services. In-memory storage,
// a disabled broker or a disabled cache do not fail readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := readinessProbes(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for name, check := range probes {
			switch err := runProbe(ctx, check); {
			case check == nil:
				checks[name] = "not configured"
			case err != nil:
				checks[name] = "error: " + err.Error()
				ready = false
			default:
				checks[name] = "ok"
			}
		}

		if !ready {
			LoggerFromCtx(ctx).Warn("readiness check failed", "checks", checks)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}

func runProbe(ctx context.Context, check probe) error {
	if check == nil {
		return nil
	}
	return check(ctx)
}
