package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint, unless the handler already set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "no-cache"
	case path == "/metrics" || strings.HasPrefix(path, "/ws/"):
		return "no-store"
	case path == "/v1/jurisdiction":
		// The boundary only changes with a redeploy.
		return "public, max-age=3600"
	case path == "/v1/geofence/check":
		return "public, max-age=86400"
	case path == "/v1/incidents" || strings.HasPrefix(path, "/v1/reports"):
		return "public, max-age=15"
	case path == "/v1/alerts":
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=60"
	}
	return ""
}
