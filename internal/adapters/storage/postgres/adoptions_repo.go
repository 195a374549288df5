package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shelter-ops/internal/domain/adoptions"
)

type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const applicationColumns = `
	id, org_id, animal_id,
	applicant_name, applicant_email, home_notes,
	fee_cents, status,
	decided_by, decided_at, completed_at, checkout_ref,
	created_at, updated_at
`

func (r *AdoptionsRepo) Create(ctx context.Context, app adoptions.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_applications (
			id, org_id, animal_id,
			applicant_name, applicant_email, home_notes,
			fee_cents, status,
			decided_by, decided_at, completed_at, checkout_ref,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		app.ID,
		app.OrgID,
		app.AnimalID,
		app.ApplicantName,
		app.ApplicantEmail,
		app.HomeNotes,
		app.FeeCents,
		app.Status,
		app.DecidedBy,
		toNullTime(app.DecidedAt),
		toNullTime(app.CompletedAt),
		app.CheckoutRef,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

func (r *AdoptionsRepo) Update(ctx context.Context, app adoptions.Application) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_applications
		SET
			home_notes = $2,
			fee_cents = $3,
			status = $4,
			decided_by = $5,
			decided_at = $6,
			completed_at = $7,
			checkout_ref = $8,
			updated_at = $9
		WHERE id = $1
	`,
		app.ID,
		app.HomeNotes,
		app.FeeCents,
		app.Status,
		app.DecidedBy,
		toNullTime(app.DecidedAt),
		toNullTime(app.CompletedAt),
		app.CheckoutRef,
		app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE id = $1
	`, id)
	return scanApplication(row)
}

func (r *AdoptionsRepo) ListByOrg(ctx context.Context, orgID string, filter adoptions.ListFilter) ([]adoptions.Application, error) {
	where := []string{"org_id = $1"}
	args := []any{orgID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `
		SELECT ` + applicationColumns + `
		FROM adoption_applications
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
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
	return scanApplications(rows)
}

func (r *AdoptionsRepo) ListByAnimal(ctx context.Context, animalID string) ([]adoptions.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE animal_id = $1
		ORDER BY created_at DESC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func scanApplication(row rowScanner) (adoptions.Application, error) {
	var app adoptions.Application
	var decided, completed sql.NullTime
	if err := row.Scan(
		&app.ID,
		&app.OrgID,
		&app.AnimalID,
		&app.ApplicantName,
		&app.ApplicantEmail,
		&app.HomeNotes,
		&app.FeeCents,
		&app.Status,
		&app.DecidedBy,
		&decided,
		&completed,
		&app.CheckoutRef,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return adoptions.Application{}, ErrNotFound
		}
		return adoptions.Application{}, err
	}
	app.DecidedAt = fromNullTime(decided)
	app.CompletedAt = fromNullTime(completed)
	return app, nil
}

func scanApplications(rows *sql.Rows) ([]adoptions.Application, error) {
	out := make([]adoptions.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}
