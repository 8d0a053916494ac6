package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// localZone is the zone calendar-day filters are evaluated in.
const localZone = "Asia/Manila"

// ReportRepo implements ports.ReportRepository with pgx.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

const reportColumns = `
	id, type, description,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lng,
	status, reporter, photos, reported_at`

func (r *ReportRepo) Create(ctx context.Context, rep *domain.Report) error {
	photos := rep.Photos
	if photos == nil {
		photos = []string{}
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reports (id, type, description, location, status, reporter, photos, reported_at)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8, $9)
	`, rep.ID, rep.Type, rep.Description, rep.Location.Lng, rep.Location.Lat,
		string(rep.Status), rep.Reporter, photos, rep.ReportedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// List returns matching reports, newest first.
func (r *ReportRepo) List(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error) {
	where, args := reportWhere(f)
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports`+where+` ORDER BY reported_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

func (r *ReportRepo) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE reports SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// reportWhere builds the WHERE clause for f. Date bounds compare local
// calendar days, inclusive.
func reportWhere(f domain.ReportFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(type ILIKE %s OR description ILIKE %s)", p, p))
	}
	if len(f.Types) > 0 {
		conds = append(conds, "type = ANY("+arg(f.Types)+")")
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(statuses)+")")
	}
	if !f.From.IsZero() {
		conds = append(conds, fmt.Sprintf("(reported_at AT TIME ZONE '%s')::date >= %s::date", localZone, arg(f.From.Format("2006-01-02"))))
	}
	if !f.To.IsZero() {
		conds = append(conds, fmt.Sprintf("(reported_at AT TIME ZONE '%s')::date <= %s::date", localZone, arg(f.To.Format("2006-01-02"))))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var rep domain.Report
	var status string
	err := row.Scan(
		&rep.ID, &rep.Type, &rep.Description,
		&rep.Location.Lat, &rep.Location.Lng,
		&status, &rep.Reporter, &rep.Photos, &rep.ReportedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.Status = domain.IncidentStatus(status)
	return &rep, nil
}
