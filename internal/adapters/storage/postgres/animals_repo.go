package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shelter-ops/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, org_id,
	name, species, breed, sex,
	birth_date, microchip,
	intake_at, intake_kind,
	status, notes,
	created_at, updated_at
`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (
			id, org_id,
			name, species, breed, sex,
			birth_date, microchip,
			intake_at, intake_kind,
			status, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		a.ID,
		a.OrgID,
		a.Name,
		a.Species,
		a.Breed,
		a.Sex,
		toNullTime(a.BirthDate),
		a.Microchip,
		a.IntakeAt,
		a.IntakeKind,
		a.Status,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = $2,
			species = $3,
			breed = $4,
			sex = $5,
			birth_date = $6,
			microchip = $7,
			status = $8,
			notes = $9,
			updated_at = $10
		WHERE id = $1
	`,
		a.ID,
		a.Name,
		a.Species,
		a.Breed,
		a.Sex,
		toNullTime(a.BirthDate),
		a.Microchip,
		a.Status,
		a.Notes,
		a.UpdatedAt,
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

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
	`, id)
	return scanAnimal(row)
}

func (r *AnimalsRepo) ListByOrg(ctx context.Context, orgID string, filter animals.ListFilter) ([]animals.Animal, error) {
	where := []string{"org_id = $1"}
	args := []any{orgID}

	if len(filter.Species) > 0 {
		ph := make([]string, 0, len(filter.Species))
		for _, sp := range filter.Species {
			args = append(args, sp)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "species IN ("+strings.Join(ph, ",")+")")
	}
	if len(filter.Statuses) > 0 {
		ph := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			args = append(args, st)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "status IN ("+strings.Join(ph, ",")+")")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(breed) LIKE $%d)", n, n))
	}

	query := `
		SELECT ` + animalColumns + `
		FROM animals
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY intake_at DESC
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

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) CountActiveByOrg(ctx context.Context, orgID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM animals
		WHERE org_id = $1 AND status NOT IN ('adopted', 'archived')
	`, orgID)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var bd sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.OrgID,
		&a.Name,
		&a.Species,
		&a.Breed,
		&a.Sex,
		&bd,
		&a.Microchip,
		&a.IntakeAt,
		&a.IntakeKind,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}
	a.BirthDate = fromNullTime(bd)
	return a, nil
}
