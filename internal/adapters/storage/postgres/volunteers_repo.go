package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shelter-ops/internal/domain/volunteers"
)

type VolunteersRepo struct {
	db *sql.DB
}

func NewVolunteersRepo(db *sql.DB) *VolunteersRepo {
	return &VolunteersRepo{db: db}
}

const activityColumns = `
	id, org_id, member_id,
	kind, hours, occurred_at, notes,
	created_at
`

func (r *VolunteersRepo) Create(ctx context.Context, a volunteers.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO volunteer_activities (
			id, org_id, member_id,
			kind, hours, occurred_at, notes,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.OrgID,
		a.MemberID,
		a.Kind,
		a.Hours,
		a.OccurredAt,
		a.Notes,
		a.CreatedAt,
	)
	return err
}

func (r *VolunteersRepo) ListByMember(ctx context.Context, memberID string, filter volunteers.ListFilter) ([]volunteers.Activity, error) {
	return r.list(ctx, "member_id", memberID, filter)
}

func (r *VolunteersRepo) ListByOrg(ctx context.Context, orgID string, filter volunteers.ListFilter) ([]volunteers.Activity, error) {
	return r.list(ctx, "org_id", orgID, filter)
}

func (r *VolunteersRepo) list(ctx context.Context, column, value string, filter volunteers.ListFilter) ([]volunteers.Activity, error) {
	where := []string{column + " = $1"}
	args := []any{value}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}

	query := `
		SELECT ` + activityColumns + `
		FROM volunteer_activities
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY occurred_at DESC
	`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]volunteers.Activity, 0)
	for rows.Next() {
		var a volunteers.Activity
		if err := rows.Scan(
			&a.ID,
			&a.OrgID,
			&a.MemberID,
			&a.Kind,
			&a.Hours,
			&a.OccurredAt,
			&a.Notes,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *VolunteersRepo) HoursTotal(ctx context.Context, orgID string, from, to *time.Time) (map[string]float64, error) {
	where := []string{"org_id = $1"}
	args := []any{orgID}

	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT member_id, COALESCE(SUM(hours), 0)
		FROM volunteer_activities
		WHERE `+strings.Join(where, " AND ")+`
		GROUP BY member_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var memberID string
		var hours float64
		if err := rows.Scan(&memberID, &hours); err != nil {
			return nil, err
		}
		totals[memberID] = hours
	}
	return totals, rows.Err()
}
