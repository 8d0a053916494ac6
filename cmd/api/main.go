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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/barangaymap/internal/adapters/http"
	"github.com/samirrijal/barangaymap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/barangaymap/internal/adapters/nats"
	"github.com/samirrijal/barangaymap/internal/adapters/postgres"
	"github.com/samirrijal/barangaymap/internal/adapters/valkey"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/core/ports"
	"github.com/samirrijal/barangaymap/internal/core/usecases"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
	"github.com/samirrijal/barangaymap/internal/pkg/logging"
	"github.com/samirrijal/barangaymap/internal/pkg/telemetry"
	"github.com/samirrijal/barangaymap/internal/workflows"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("barangaymap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "barangaymap-api")

	jurisdiction, err := config.LoadJurisdiction(cfg.Jurisdiction.Path)
	if err != nil {
		log.Fatalf("jurisdiction: %v", err)
	}
	slog.Info("jurisdiction loaded", "name", jurisdiction.Label(), "vertices", len(jurisdiction.Boundary))

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

	deps := &http.Dependencies{Map: cfg.Map, FixSubject: cfg.NATS.FixSubject}

	// Storage: in-memory seed data in dev mode, Postgres otherwise.
	var (
		reports ports.ReportRepository
		alerts  ports.AlertRepository
	)
	if cfg.Dev {
		slog.Warn("dev mode: using in-memory repositories")
		reports = memory.NewReportRepo(memory.SeedReports())
		alerts = memory.NewAlertRepo(memory.SeedAlerts())
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		reports = postgres.NewReportRepo(db)
		alerts = postgres.NewAlertRepo(db)
		deps.DB = db
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr, "barangaymap")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.NATS = pub.Conn()
		}
	}

	// Triage workflows
	var triage ports.TriageScheduler
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    slog.Default(),
		})
		if err != nil {
			slog.Warn("temporal unavailable, triage disabled", "error", err)
		} else {
			defer tc.Close()
			triage = workflows.NewStarter(tc, cfg.Temporal.TaskQueue, cfg.Temporal.EscalateAfter)
		}
	}

	viewport := mapview.ViewportConstraint{
		Buffer:  cfg.Map.BoundsBuffer,
		MinZoom: cfg.Map.MinZoom,
		MaxZoom: cfg.Map.MaxZoom,
	}
	deps.Reports = usecases.NewReportService(reports, jurisdiction, publisher, triage, cache)
	deps.Incidents = usecases.NewIncidentService(reports, cache, cfg.Valkey.MarkerTTL)
	deps.Alerts = usecases.NewAlertService(alerts)
	deps.Geofence = usecases.NewGeofenceService(jurisdiction, viewport, cfg.Map.DefaultZoom)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    8 * 1024 * 1024, // photos are sent inline
		AppName:      "Barangay Incident Map API",
	})
	app.Use(recover.New())

	routerCfg := http.DefaultRouterConfig()
	routerCfg.AllowOrigins = cfg.Server.AllowOrigins
	http.SetupRoutes(app, deps, routerCfg)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "dev", cfg.Dev)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
