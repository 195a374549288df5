package postgres

import (
	"context"
	"database/sql"
	"strings"

	"shelter-ops/internal/domain/organizations"
)

type OrganizationsRepo struct {
	db *sql.DB
}

func NewOrganizationsRepo(db *sql.DB) *OrganizationsRepo {
	return &OrganizationsRepo{db: db}
}

func (r *OrganizationsRepo) Create(ctx context.Context, o organizations.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (
			id, name, city, contact_email,
			tier, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		o.ID,
		o.Name,
		o.City,
		o.ContactEmail,
		o.Tier,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *OrganizationsRepo) Update(ctx context.Context, o organizations.Organization) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET
			name = $2,
			city = $3,
			contact_email = $4,
			tier = $5,
			status = $6,
			updated_at = $7
		WHERE id = $1
	`,
		o.ID,
		o.Name,
		o.City,
		o.ContactEmail,
		o.Tier,
		o.Status,
		o.UpdatedAt,
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

func (r *OrganizationsRepo) GetByID(ctx context.Context, id string) (organizations.Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return organizations.Organization{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, city, contact_email,
			tier, status,
			created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id)

	var o organizations.Organization
	if err := row.Scan(
		&o.ID,
		&o.Name,
		&o.City,
		&o.ContactEmail,
		&o.Tier,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return organizations.Organization{}, ErrNotFound
		}
		return organizations.Organization{}, err
	}

	return o, nil
}
