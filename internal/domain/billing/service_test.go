package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"shelter-ops/internal/domain/organizations"
	"shelter-ops/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOrgRepo struct {
	orgs map[string]organizations.Organization
}

func (r *testOrgRepo) Create(_ context.Context, o organizations.Organization) error {
	r.orgs[o.ID] = o
	return nil
}

func (r *testOrgRepo) Update(_ context.Context, o organizations.Organization) error {
	if _, ok := r.orgs[o.ID]; !ok {
		return errors.New("no rows")
	}
	r.orgs[o.ID] = o
	return nil
}

func (r *testOrgRepo) GetByID(_ context.Context, id string) (organizations.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return organizations.Organization{}, errors.New("no rows")
	}
	return o, nil
}

type testRepo struct {
	subs   map[string]Subscription // por orgID
	events map[string]BillingEvent // por external_event_id
}

func newTestRepo() *testRepo {
	return &testRepo{
		subs:   make(map[string]Subscription),
		events: make(map[string]BillingEvent),
	}
}

func (r *testRepo) CreateSubscription(_ context.Context, sub Subscription) error {
	if _, ok := r.subs[sub.OrgID]; ok {
		return errors.New("duplicate")
	}
	r.subs[sub.OrgID] = sub
	return nil
}

func (r *testRepo) UpdateSubscription(_ context.Context, sub Subscription) error {
	if _, ok := r.subs[sub.OrgID]; !ok {
		return errors.New("no rows")
	}
	r.subs[sub.OrgID] = sub
	return nil
}

func (r *testRepo) GetSubscriptionByOrg(_ context.Context, orgID string) (Subscription, error) {
	sub, ok := r.subs[orgID]
	if !ok {
		return Subscription{}, errors.New("no rows")
	}
	return sub, nil
}

func (r *testRepo) CreateEvent(_ context.Context, ev BillingEvent) error {
	if _, ok := r.events[ev.ExternalEventID]; ok {
		return ErrDuplicateEvent
	}
	r.events[ev.ExternalEventID] = ev
	return nil
}

func (r *testRepo) ListEventsByOrg(_ context.Context, orgID string, limit int) ([]BillingEvent, error) {
	out := make([]BillingEvent, 0)
	for _, ev := range r.events {
		if ev.OrgID == orgID {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	svc     *Service
	repo    *testRepo
	orgsSvc *organizations.Service
	orgRepo *testOrgRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	orgRepo := &testOrgRepo{orgs: make(map[string]organizations.Organization)}
	orgsSvc := organizations.NewService(orgRepo)

	repo := newTestRepo()
	log := logger.New(logger.Options{Level: logger.Error})
	svc := NewService(repo, orgsSvc, log)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }

	return fixture{svc: svc, repo: repo, orgsSvc: orgsSvc, orgRepo: orgRepo}
}

func (f fixture) createOrg(t *testing.T, name string) organizations.Organization {
	t.Helper()
	org, err := f.orgsSvc.Create(context.Background(), organizations.CreateInput{Name: name})
	require.NoError(t, err)
	return org
}

func stripeEvent(t *testing.T, id, typ, orgID string, extra map[string]any) []byte {
	t.Helper()
	object := map[string]any{"client_reference_id": orgID}
	for k, v := range extra {
		object[k] = v
	}
	payload, err := json.Marshal(map[string]any{
		"id":   id,
		"type": typ,
		"data": map[string]any{"object": object},
	})
	require.NoError(t, err)
	return payload
}

func TestSubscriptionLazyDefault(t *testing.T) {
	f := newFixture(t)
	org := f.createOrg(t, "Refugio Patitas")

	sub, err := f.svc.Subscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Tier)
	assert.Equal(t, SubStatusActive, sub.Status)

	// Segunda lectura devuelve la misma
	again, err := f.svc.Subscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
}

func TestSubscriptionUnknownOrg(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Subscription(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutCompletedUpgradesToPremium(t *testing.T) {
	f := newFixture(t)
	org := f.createOrg(t, "Refugio Patitas")

	payload := stripeEvent(t, "evt_1", "checkout.session.completed", org.ID, map[string]any{
		"customer":           "cus_123",
		"subscription":       "sub_456",
		"current_period_end": time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Unix(),
	})

	processed, err := f.svc.ProcessWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, processed)

	sub, err := f.svc.Subscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, "premium", sub.Tier)
	assert.Equal(t, SubStatusActive, sub.Status)
	assert.Equal(t, "cus_123", sub.ExternalCustomerID)
	assert.Equal(t, "sub_456", sub.ExternalSubID)
	require.NotNil(t, sub.CurrentPeriodEnd)

	got, err := f.orgsSvc.GetByID(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, organizations.TierPremium, got.Tier)
}

func TestReplayedEventIsNoOp(t *testing.T) {
	f := newFixture(t)
	org := f.createOrg(t, "Refugio Patitas")

	payload := stripeEvent(t, "evt_1", "checkout.session.completed", org.ID, nil)

	processed, err := f.svc.ProcessWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = f.svc.ProcessWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, processed, "replay must not be reprocessed")
}

func TestPaymentFailedMarksPastDue(t *testing.T) {
	f := newFixture(t)
	org := f.createOrg(t, "Refugio Patitas")

	_, err := f.svc.ProcessWebhook(context.Background(),
		stripeEvent(t, "evt_1", "checkout.session.completed", org.ID, nil))
	require.NoError(t, err)

	_, err = f.svc.ProcessWebhook(context.Background(),
		stripeEvent(t, "evt_2", "invoice.payment_failed", org.ID, nil))
	require.NoError(t, err)

	sub, err := f.svc.Subscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, SubStatusPastDue, sub.Status)
	// past_due no degrada el tier todavía
	assert.Equal(t, "premium", sub.Tier)
}

func TestSubscriptionDeletedDowngradesToFree(t *testing.T) {
	f := newFixture(t)
	org := f.createOrg(t, "Refugio Patitas")

	_, err := f.svc.ProcessWebhook(context.Background(),
		stripeEvent(t, "evt_1", "checkout.session.completed", org.ID, nil))
	require.NoError(t, err)

	_, err = f.svc.ProcessWebhook(context.Background(),
		stripeEvent(t, "evt_2", "customer.subscription.deleted", org.ID, nil))
	require.NoError(t, err)

	sub, err := f.svc.Subscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, SubStatusCanceled, sub.Status)
	assert.Equal(t, "free", sub.Tier)

	got, err := f.orgsSvc.GetByID(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, organizations.TierFree, got.Tier)
}

func TestUnknownEventTypeRecordedAndIgnored(t *testing.T) {
	f := newFixture(t)
	org := f.createOrg(t, "Refugio Patitas")

	processed, err := f.svc.ProcessWebhook(context.Background(),
		stripeEvent(t, "evt_9", "customer.updated", org.ID, nil))
	require.NoError(t, err)
	assert.True(t, processed)

	events, err := f.svc.ListEvents(context.Background(), org.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "customer.updated", events[0].Type)

	sub, err := f.svc.Subscription(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Tier)
}
