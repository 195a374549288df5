package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shelter-ops/internal/domain/billing"

	"github.com/jackc/pgx/v5/pgconn"
)

type BillingRepo struct {
	db *sql.DB
}

func NewBillingRepo(db *sql.DB) *BillingRepo {
	return &BillingRepo{db: db}
}

func (r *BillingRepo) CreateSubscription(ctx context.Context, sub billing.Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, org_id, tier, status,
			external_customer_id, external_sub_id, current_period_end,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		sub.ID,
		sub.OrgID,
		sub.Tier,
		sub.Status,
		sub.ExternalCustomerID,
		sub.ExternalSubID,
		toNullTime(sub.CurrentPeriodEnd),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	return err
}

func (r *BillingRepo) UpdateSubscription(ctx context.Context, sub billing.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET
			tier = $2,
			status = $3,
			external_customer_id = $4,
			external_sub_id = $5,
			current_period_end = $6,
			updated_at = $7
		WHERE org_id = $1
	`,
		sub.OrgID,
		sub.Tier,
		sub.Status,
		sub.ExternalCustomerID,
		sub.ExternalSubID,
		toNullTime(sub.CurrentPeriodEnd),
		sub.UpdatedAt,
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

func (r *BillingRepo) GetSubscriptionByOrg(ctx context.Context, orgID string) (billing.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, org_id, tier, status,
			external_customer_id, external_sub_id, current_period_end,
			created_at, updated_at
		FROM subscriptions
		WHERE org_id = $1
	`, orgID)

	var sub billing.Subscription
	var periodEnd sql.NullTime
	if err := row.Scan(
		&sub.ID,
		&sub.OrgID,
		&sub.Tier,
		&sub.Status,
		&sub.ExternalCustomerID,
		&sub.ExternalSubID,
		&periodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return billing.Subscription{}, ErrNotFound
		}
		return billing.Subscription{}, err
	}
	sub.CurrentPeriodEnd = fromNullTime(periodEnd)
	return sub, nil
}

func (r *BillingRepo) CreateEvent(ctx context.Context, ev billing.BillingEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_events (
			id, org_id, external_event_id, type, payload, received_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		ev.ID,
		ev.OrgID,
		ev.ExternalEventID,
		ev.Type,
		ev.Payload,
		ev.ReceivedAt,
	)
	if err != nil {
		// 23505 = unique_violation: el webhook ya se procesó
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return billing.ErrDuplicateEvent
		}
		return err
	}
	return nil
}

func (r *BillingRepo) ListEventsByOrg(ctx context.Context, orgID string, limit int) ([]billing.BillingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, org_id, external_event_id, type, payload, received_at
		FROM billing_events
		WHERE org_id = $1
		ORDER BY received_at DESC
		LIMIT $2
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]billing.BillingEvent, 0)
	for rows.Next() {
		var ev billing.BillingEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.OrgID,
			&ev.ExternalEventID,
			&ev.Type,
			&ev.Payload,
			&ev.ReceivedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
