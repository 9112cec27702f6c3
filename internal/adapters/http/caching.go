package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on GET responses when the
// handler did not set one. Plan sessions are never cached.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != fiber.MethodGet {
			return err
		}
		// Don't override if already set
		if c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		// Default cache times by endpoint pattern
		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "no-cache"
		case path == "/metrics":
			ttl = "no-cache"
		case strings.HasPrefix(path, "/v1/plans"):
			ttl = "no-store"
		case strings.HasSuffix(path, "/gpx"):
			ttl = "private, max-age=3600"
		case strings.HasPrefix(path, "/v1/routes"):
			ttl = "private, max-age=0, must-revalidate" // mutable, rely on ETag
		case strings.HasPrefix(path, "/v1/places"):
			ttl = "public, max-age=86400"
		case strings.HasPrefix(path, "/v1/weather"):
			ttl = "public, max-age=600"
		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
