package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	natsadapter "github.com/samirrijal/barangaymap/internal/adapters/nats"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
	"github.com/samirrijal/barangaymap/internal/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("barangaymap-fixrelay")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, "barangaymap-fixrelay")

	manifestPath := "devices.yaml"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	manifest, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}
	prefix := manifest.Prefix
	if prefix == "" {
		prefix = cfg.NATS.FixSubject
	}

	nc, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Drain()

	r := newRelay(&http.Client{Timeout: 10 * time.Second}, func(device string, m natsadapter.FixMessage) error {
		return natsadapter.PublishFix(nc, prefix, device, m)
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(manifest.Interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("fix relay started", "devices", len(manifest.Devices), "interval", manifest.Interval, "prefix", prefix)

	r.pollAll(ctx, manifest.Devices)
	for {
		select {
		case <-ticker.C:
			r.pollAll(ctx, manifest.Devices)
		case sig := <-quit:
			slog.Info("shutting down fix relay", "signal", sig.String())
			cancel()
			return
		}
	}
}
