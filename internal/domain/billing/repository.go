package billing

import "context"

type Repository interface {
	CreateSubscription(ctx context.Context, sub Subscription) error
	UpdateSubscription(ctx context.Context, sub Subscription) error
	GetSubscriptionByOrg(ctx context.Context, orgID string) (Subscription, error)

	// CreateEvent falla con ErrDuplicateEvent si el external_event_id ya existe.
	CreateEvent(ctx context.Context, ev BillingEvent) error
	ListEventsByOrg(ctx context.Context, orgID string, limit int) ([]BillingEvent, error)
}
