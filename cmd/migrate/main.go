package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/samirrijal/barangaymap/internal/adapters/memory"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
	"github.com/samirrijal/barangaymap/internal/pkg/logging"
	"github.com/samirrijal/barangaymap/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|seed|status>")
	}
	_ = godotenv.Load()

	cfg, err := config.Load("barangaymap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text", "barangaymap-migrate")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		err = up(ctx, pool)
	case "seed":
		err = seed(ctx, pool)
	case "status":
		err = status(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

func ensureTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func applied(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	done := make(map[string]bool)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		done[n] = true
	}
	return done, rows.Err()
}

func up(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureTable(ctx, pool); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}
	all, err := migrations.All()
	if err != nil {
		return err
	}
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}

	for _, m := range all {
		if done[m.Name] {
			continue
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("exec %s: %w", m.Name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		fmt.Printf("OK  %s\n", m.Name)
	}

	slog.Info("all migrations applied")
	return nil
}

// seed loads the sample reports and alerts. Existing rows are kept.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	for _, r := range memory.SeedReports() {
		_, err := pool.Exec(ctx, `
			INSERT INTO reports (id, type, description, location, status, reporter, photos, reported_at)
			VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, '{}', $8)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Type, r.Description, r.Location.Lng, r.Location.Lat, string(r.Status), r.Reporter, r.ReportedAt)
		if err != nil {
			return fmt.Errorf("seed report %s: %w", r.ID, err)
		}
	}
	for _, a := range memory.SeedAlerts() {
		_, err := pool.Exec(ctx, `
			INSERT INTO alerts (id, title, message, type, source, issued_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, a.ID, a.Title, a.Message, string(a.Type), a.Source, a.IssuedAt)
		if err != nil {
			return fmt.Errorf("seed alert %s: %w", a.ID, err)
		}
	}
	slog.Info("seed data loaded")
	return nil
}

func status(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureTable(ctx, pool); err != nil {
		return err
	}
	all, err := migrations.All()
	if err != nil {
		return err
	}
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}
	for _, m := range all {
		mark := "pending"
		if done[m.Name] {
			mark = "applied"
		}
		fmt.Printf("%-8s %s\n", mark, m.Name)
	}
	return nil
}
