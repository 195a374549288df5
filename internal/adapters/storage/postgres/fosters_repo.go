package postgres

import (
	"context"
	"database/sql"

	"shelter-ops/internal/domain/fosters"
)

type FostersRepo struct {
	db *sql.DB
}

func NewFostersRepo(db *sql.DB) *FostersRepo {
	return &FostersRepo{db: db}
}

const placementColumns = `
	id, org_id, animal_id, member_id,
	status, started_at, ended_at, notes
`

func (r *FostersRepo) Create(ctx context.Context, p fosters.Placement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO foster_placements (
			id, org_id, animal_id, member_id,
			status, started_at, ended_at, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.OrgID,
		p.AnimalID,
		p.MemberID,
		p.Status,
		p.StartedAt,
		toNullTime(p.EndedAt),
		p.Notes,
	)
	return err
}

func (r *FostersRepo) Update(ctx context.Context, p fosters.Placement) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE foster_placements
		SET
			status = $2,
			ended_at = $3,
			notes = $4
		WHERE id = $1
	`,
		p.ID,
		p.Status,
		toNullTime(p.EndedAt),
		p.Notes,
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

func (r *FostersRepo) GetByID(ctx context.Context, id string) (fosters.Placement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+placementColumns+`
		FROM foster_placements
		WHERE id = $1
	`, id)
	return scanPlacement(row)
}

func (r *FostersRepo) ListByAnimal(ctx context.Context, animalID string) ([]fosters.Placement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+placementColumns+`
		FROM foster_placements
		WHERE animal_id = $1
		ORDER BY started_at DESC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlacements(rows)
}

func (r *FostersRepo) ListByMember(ctx context.Context, memberID string) ([]fosters.Placement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+placementColumns+`
		FROM foster_placements
		WHERE member_id = $1
		ORDER BY started_at DESC
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlacements(rows)
}

func (r *FostersRepo) GetActiveByAnimal(ctx context.Context, animalID string) (fosters.Placement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+placementColumns+`
		FROM foster_placements
		WHERE animal_id = $1 AND status = 'active'
	`, animalID)
	return scanPlacement(row)
}

func scanPlacement(row rowScanner) (fosters.Placement, error) {
	var p fosters.Placement
	var ended sql.NullTime
	if err := row.Scan(
		&p.ID,
		&p.OrgID,
		&p.AnimalID,
		&p.MemberID,
		&p.Status,
		&p.StartedAt,
		&ended,
		&p.Notes,
	); err != nil {
		if err == sql.ErrNoRows {
			return fosters.Placement{}, ErrNotFound
		}
		return fosters.Placement{}, err
	}
	p.EndedAt = fromNullTime(ended)
	return p, nil
}

func scanPlacements(rows *sql.Rows) ([]fosters.Placement, error) {
	out := make([]fosters.Placement, 0)
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
