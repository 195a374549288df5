package postgres

import (
	"context"
	"database/sql"
	"strings"

	"shelter-ops/internal/domain/members"
)

type MembersRepo struct {
	db *sql.DB
}

func NewMembersRepo(db *sql.DB) *MembersRepo {
	return &MembersRepo{db: db}
}

const memberColumns = `
	id, org_id, user_id, email,
	role, status,
	created_at, updated_at, revoked_at
`

func (r *MembersRepo) Create(ctx context.Context, m members.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (
			id, org_id, user_id, email,
			role, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.OrgID,
		m.UserID,
		m.Email,
		m.Role,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
		toNullTime(m.RevokedAt),
	)
	return err
}

func (r *MembersRepo) Update(ctx context.Context, m members.Member) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET
			email = $2,
			role = $3,
			status = $4,
			updated_at = $5,
			revoked_at = $6
		WHERE id = $1
	`,
		m.ID,
		m.Email,
		m.Role,
		m.Status,
		m.UpdatedAt,
		toNullTime(m.RevokedAt),
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

func (r *MembersRepo) GetByID(ctx context.Context, id string) (members.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = $1
	`, id)
	return scanMember(row)
}

func (r *MembersRepo) ListByOrg(ctx context.Context, orgID string) ([]members.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE org_id = $1
		ORDER BY created_at ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *MembersRepo) ListByUser(ctx context.Context, userID string) ([]members.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *MembersRepo) GetActiveMember(ctx context.Context, orgID, userID string) (members.Member, error) {
	orgID = strings.TrimSpace(orgID)
	userID = strings.TrimSpace(userID)
	if orgID == "" || userID == "" {
		return members.Member{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE org_id = $1 AND user_id = $2 AND status = 'active'
	`, orgID, userID)
	return scanMember(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (members.Member, error) {
	var m members.Member
	var revoked sql.NullTime
	if err := row.Scan(
		&m.ID,
		&m.OrgID,
		&m.UserID,
		&m.Email,
		&m.Role,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
		&revoked,
	); err != nil {
		if err == sql.ErrNoRows {
			return members.Member{}, ErrNotFound
		}
		return members.Member{}, err
	}
	m.RevokedAt = fromNullTime(revoked)
	return m, nil
}

func scanMembers(rows *sql.Rows) ([]members.Member, error) {
	out := make([]members.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
