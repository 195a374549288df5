package postgres

import (
	"context"
	"database/sql"
	"time"

	"shelter-ops/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

func (r *ReportsRepo) CountsByStatus(ctx context.Context, orgID string) ([]reports.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM animals
		WHERE org_id = $1
		GROUP BY status
		ORDER BY status
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.StatusCount, 0)
	for rows.Next() {
		var sc reports.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *ReportsRepo) IntakeOutcomeByMonth(ctx context.Context, orgID string, until time.Time, months int) ([]reports.MonthlyFlow, error) {
	start := time.Date(until.Year(), until.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	// generate_series asegura meses sin movimiento con cero
	rows, err := r.db.QueryContext(ctx, `
		WITH buckets AS (
			SELECT to_char(gs, 'YYYY-MM') AS month
			FROM generate_series($2::timestamptz, $3::timestamptz, interval '1 month') gs
		),
		intakes AS (
			SELECT to_char(date_trunc('month', intake_at), 'YYYY-MM') AS month, COUNT(*) AS n
			FROM animals
			WHERE org_id = $1
			GROUP BY 1
		),
		outcomes AS (
			SELECT to_char(date_trunc('month', completed_at), 'YYYY-MM') AS month, COUNT(*) AS n
			FROM adoption_applications
			WHERE org_id = $1 AND status = 'completed' AND completed_at IS NOT NULL
			GROUP BY 1
		)
		SELECT b.month, COALESCE(i.n, 0), COALESCE(o.n, 0)
		FROM buckets b
		LEFT JOIN intakes i ON i.month = b.month
		LEFT JOIN outcomes o ON o.month = b.month
		ORDER BY b.month
	`, orgID, start, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.MonthlyFlow, 0, months)
	for rows.Next() {
		var mf reports.MonthlyFlow
		if err := rows.Scan(&mf.Month, &mf.Intakes, &mf.Adoptions); err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, rows.Err()
}

func (r *ReportsRepo) VolunteerHours(ctx context.Context, orgID string, from, to *time.Time) ([]reports.MemberHours, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT member_id, COALESCE(SUM(hours), 0) AS total
		FROM volunteer_activities
		WHERE org_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at <= $3)
		GROUP BY member_id
		ORDER BY total DESC
	`, orgID, toNullTime(from), toNullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.MemberHours, 0)
	for rows.Next() {
		var mh reports.MemberHours
		if err := rows.Scan(&mh.MemberID, &mh.Hours); err != nil {
			return nil, err
		}
		out = append(out, mh)
	}
	return out, rows.Err()
}
