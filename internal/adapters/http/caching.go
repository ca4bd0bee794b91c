package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/v1/calendar/status":
			ttl = "public, max-age=60" // Cache provenance: 1 min

		case strings.HasPrefix(path, "/v1/calendar/"):
			ttl = "public, max-age=600" // Calendar facts change at most daily

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"

		default:
			return err
		}

		c.Set("Cache-Control", ttl)
		return err
	}
}
