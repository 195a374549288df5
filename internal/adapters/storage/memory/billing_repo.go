package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"shelter-ops/internal/domain/billing"
)

type billingRepo struct {
	mu       sync.RWMutex
	subByOrg map[string]billing.Subscription
	events   map[string]billing.BillingEvent // por external_event_id
}

func NewBillingRepo() billing.Repository {
	return &billingRepo{
		subByOrg: make(map[string]billing.Subscription),
		events:   make(map[string]billing.BillingEvent),
	}
}

func (r *billingRepo) CreateSubscription(ctx context.Context, sub billing.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(sub.OrgID) == "" {
		return errors.New("org id required")
	}
	if _, exists := r.subByOrg[sub.OrgID]; exists {
		return errors.New("subscription already exists")
	}
	r.subByOrg[sub.OrgID] = sub
	return nil
}

func (r *billingRepo) UpdateSubscription(ctx context.Context, sub billing.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subByOrg[sub.OrgID]; !exists {
		return ErrNotFound
	}
	r.subByOrg[sub.OrgID] = sub
	return nil
}

func (r *billingRepo) GetSubscriptionByOrg(ctx context.Context, orgID string) (billing.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subByOrg[orgID]
	if !ok {
		return billing.Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (r *billingRepo) CreateEvent(ctx context.Context, ev billing.BillingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(ev.ExternalEventID) == "" {
		return errors.New("external event id required")
	}
	if _, exists := r.events[ev.ExternalEventID]; exists {
		return billing.ErrDuplicateEvent
	}
	r.events[ev.ExternalEventID] = ev
	return nil
}

func (r *billingRepo) ListEventsByOrg(ctx context.Context, orgID string, limit int) ([]billing.BillingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]billing.BillingEvent, 0)
	for _, ev := range r.events {
		if ev.OrgID == orgID {
			out = append(out, ev)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
