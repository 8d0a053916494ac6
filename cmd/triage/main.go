package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/barangaymap/internal/adapters/nats"
	"github.com/samirrijal/barangaymap/internal/adapters/postgres"
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/core/usecases"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
	"github.com/samirrijal/barangaymap/internal/pkg/logging"
	"github.com/samirrijal/barangaymap/internal/workflows"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("barangaymap-triage")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, "barangaymap-triage")

	jurisdiction, err := config.LoadJurisdiction(cfg.Jurisdiction.Path)
	if err != nil {
		log.Fatalf("jurisdiction: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// Escalations publish status changes but never schedule triage again.
	reports := usecases.NewReportService(postgres.NewReportRepo(db), jurisdiction, pub, nil, nil)
	geofence := usecases.NewGeofenceService(jurisdiction, mapview.DefaultViewportConstraint(), cfg.Map.DefaultZoom)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.TriageWorkflow)
	w.RegisterActivity(&workflows.TriageActivities{
		Reports:  reports,
		Geofence: geofence,
		Logger:   logger,
	})

	// Reports filed while the API had no Temporal connection still arrive
	// here through JetStream; the workflow ID makes the second start a no-op.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	starter := workflows.NewStarter(c, cfg.Temporal.TaskQueue, cfg.Temporal.EscalateAfter)
	if err := sub.SubscribeReportsCreated(ctx, func(ctx context.Context, r *domain.Report) error {
		return starter.ScheduleTriage(ctx, r)
	}); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("triage worker started", "task_queue", cfg.Temporal.TaskQueue, "escalate_after", cfg.Temporal.EscalateAfter)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
