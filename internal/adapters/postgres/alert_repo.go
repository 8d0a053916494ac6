package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// AlertRepo implements ports.AlertRepository with pgx.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// List returns up to limit alerts, newest first.
func (r *AlertRepo) List(ctx context.Context, limit int) ([]domain.Alert, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, message, type, source, issued_at
		FROM alerts
		ORDER BY issued_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var typ string
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &typ, &a.Source, &a.IssuedAt); err != nil {
			return nil, err
		}
		a.Type = domain.AlertType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}
