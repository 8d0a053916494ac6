package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/barangaymap/api"
	"github.com/samirrijal/barangaymap/internal/pkg/metrics"
)

// RouterConfig tunes cross-cutting middleware.
type RouterConfig struct {
	AllowOrigins string
	// RateLimit is requests per minute per IP; zero disables limiting.
	RateLimit int
	// OpenAPI is the document served under /docs.
	OpenAPI []byte
}

// DefaultRouterConfig matches the production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{AllowOrigins: "*", RateLimit: 120, OpenAPI: api.OpenAPI}
}

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			Next: func(c *fiber.Ctx) bool {
				// Skip liveness probes and scrapes.
				return c.Path() == "/v1/health" || c.Path() == "/metrics"
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/jurisdiction", JurisdictionHandler(deps))
	v1.Get("/geofence/check", GeofenceCheckHandler(deps))
	v1.Get("/incidents", timeout.NewWithContext(ListIncidentsHandler(deps), requestTimeout))
	v1.Get("/reports", timeout.NewWithContext(ListReportsHandler(deps), requestTimeout))
	v1.Post("/reports", timeout.NewWithContext(CreateReportHandler(deps), requestTimeout))
	v1.Get("/reports/:id", timeout.NewWithContext(GetReportHandler(deps), requestTimeout))
	v1.Patch("/reports/:id/status", timeout.NewWithContext(UpdateReportStatusHandler(deps), requestTimeout))
	v1.Get("/alerts", timeout.NewWithContext(ListAlertsHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, cfg.OpenAPI)

	app.Get("/ws/map", MapSessionUpgrade(deps), websocket.New(MapSessionHandler(deps)))
}
