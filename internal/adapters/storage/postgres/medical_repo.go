package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shelter-ops/internal/domain/medical"
)

type MedicalRepo struct {
	db *sql.DB
}

func NewMedicalRepo(db *sql.DB) *MedicalRepo {
	return &MedicalRepo{db: db}
}

const recordColumns = `
	id, org_id, animal_id, type,
	occurred_at, recorded_at,
	title, notes, product, dose,
	actor_member_id, status
`

func (r *MedicalRepo) CreateRecord(ctx context.Context, rec medical.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (
			id, org_id, animal_id, type,
			occurred_at, recorded_at,
			title, notes, product, dose,
			actor_member_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rec.ID,
		rec.OrgID,
		rec.AnimalID,
		rec.Type,
		rec.OccurredAt,
		rec.RecordedAt,
		rec.Title,
		rec.Notes,
		rec.Product,
		rec.Dose,
		rec.ActorMemberID,
		rec.Status,
	)
	return err
}

func (r *MedicalRepo) GetRecordByID(ctx context.Context, id string) (medical.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM medical_records
		WHERE id = $1
	`, id)
	return scanRecord(row)
}

func (r *MedicalRepo) ListRecordsByAnimal(ctx context.Context, animalID string, filter medical.ListFilter) ([]medical.Record, error) {
	where := []string{"animal_id = $1"}
	args := []any{animalID}

	if len(filter.Types) > 0 {
		ph := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			args = append(args, t)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "type IN ("+strings.Join(ph, ",")+")")
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(notes) LIKE $%d OR LOWER(product) LIKE $%d)", n, n, n))
	}

	query := `
		SELECT ` + recordColumns + `
		FROM medical_records
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

	out := make([]medical.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *MedicalRepo) VoidRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET status = 'voided'
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const taskColumns = `
	id, org_id, animal_id, type, title,
	due_on, status, completed_at, record_id,
	created_at, updated_at
`

func (r *MedicalRepo) CreateTask(ctx context.Context, t medical.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_tasks (
			id, org_id, animal_id, type, title,
			due_on, status, completed_at, record_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		t.ID,
		t.OrgID,
		t.AnimalID,
		t.Type,
		t.Title,
		t.DueOn,
		t.Status,
		toNullTime(t.CompletedAt),
		nullString(t.RecordID),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *MedicalRepo) UpdateTask(ctx context.Context, t medical.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_tasks
		SET
			title = $2,
			due_on = $3,
			status = $4,
			completed_at = $5,
			record_id = $6,
			updated_at = $7
		WHERE id = $1
	`,
		t.ID,
		t.Title,
		t.DueOn,
		t.Status,
		toNullTime(t.CompletedAt),
		nullString(t.RecordID),
		t.UpdatedAt,
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

func (r *MedicalRepo) GetTaskByID(ctx context.Context, id string) (medical.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM medical_tasks
		WHERE id = $1
	`, id)
	return scanTask(row)
}

func (r *MedicalRepo) ListTasksByOrg(ctx context.Context, orgID string, filter medical.TaskFilter) ([]medical.Task, error) {
	where := []string{"org_id = $1"}
	args := []any{orgID}

	if len(filter.Statuses) > 0 {
		ph := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			args = append(args, st)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "status IN ("+strings.Join(ph, ",")+")")
	}
	if filter.AnimalID != "" {
		args = append(args, filter.AnimalID)
		where = append(where, fmt.Sprintf("animal_id = $%d", len(args)))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		where = append(where, fmt.Sprintf("due_on <= $%d", len(args)))
	}

	query := `
		SELECT ` + taskColumns + `
		FROM medical_tasks
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY due_on ASC
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
	return scanTasks(rows)
}

func (r *MedicalRepo) ListDueTasks(ctx context.Context, before time.Time) ([]medical.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM medical_tasks
		WHERE status != 'done' AND due_on <= $1
		ORDER BY due_on ASC
	`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanRecord(row rowScanner) (medical.Record, error) {
	var rec medical.Record
	if err := row.Scan(
		&rec.ID,
		&rec.OrgID,
		&rec.AnimalID,
		&rec.Type,
		&rec.OccurredAt,
		&rec.RecordedAt,
		&rec.Title,
		&rec.Notes,
		&rec.Product,
		&rec.Dose,
		&rec.ActorMemberID,
		&rec.Status,
	); err != nil {
		if err == sql.ErrNoRows {
			return medical.Record{}, ErrNotFound
		}
		return medical.Record{}, err
	}
	return rec, nil
}

func scanTask(row rowScanner) (medical.Task, error) {
	var t medical.Task
	var completed sql.NullTime
	var recordID sql.NullString
	if err := row.Scan(
		&t.ID,
		&t.OrgID,
		&t.AnimalID,
		&t.Type,
		&t.Title,
		&t.DueOn,
		&t.Status,
		&completed,
		&recordID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medical.Task{}, ErrNotFound
		}
		return medical.Task{}, err
	}
	t.CompletedAt = fromNullTime(completed)
	t.RecordID = recordID.String
	return t, nil
}

func scanTasks(rows *sql.Rows) ([]medical.Task, error) {
	out := make([]medical.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
