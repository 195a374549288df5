package tiers

import (
	"context"
	"encoding/json"
	"testing"

	"shelter-ops/internal/adapters/storage/memory"
	"shelter-ops/internal/domain/billing"
	"shelter-ops/internal/domain/organizations"
	"shelter-ops/internal/platform/logger"
)

func newFixture(t *testing.T) (*Resolver, *billing.Service, organizations.Organization) {
	t.Helper()

	orgsSvc := organizations.NewService(memory.NewOrganizationRepo())
	org, err := orgsSvc.Create(context.Background(), organizations.CreateInput{Name: "Refugio Sur"})
	if err != nil {
		t.Fatalf("Create org: %v", err)
	}

	log := logger.New(logger.Options{Level: logger.Error})
	billingSvc := billing.NewService(memory.NewBillingRepo(), orgsSvc, log)

	return NewResolver(billingSvc), billingSvc, org
}

func upgrade(t *testing.T, billingSvc *billing.Service, orgID, eventID string) {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{"client_reference_id": orgID}},
	})
	if _, err := billingSvc.ProcessWebhook(context.Background(), payload); err != nil {
		t.Fatalf("ProcessWebhook: %v", err)
	}
}

func TestFreeTierCapabilities(t *testing.T) {
	r, _, org := newFixture(t)

	for capability, want := range map[string]bool{
		"reports:view":      true,
		"reports:export":    false,
		"animals:unlimited": false,
	} {
		got, err := r.Has(context.Background(), org.ID, capability)
		if err != nil {
			t.Fatalf("Has(%s): %v", capability, err)
		}
		if got != want {
			t.Fatalf("Has(%s) = %v, want %v", capability, got, want)
		}
	}
}

func TestPremiumTierCapabilities(t *testing.T) {
	r, billingSvc, org := newFixture(t)
	upgrade(t, billingSvc, org.ID, "evt_1")

	for _, capability := range []string{"reports:view", "reports:export", "animals:unlimited"} {
		got, err := r.Has(context.Background(), org.ID, capability)
		if err != nil {
			t.Fatalf("Has(%s): %v", capability, err)
		}
		if !got {
			t.Fatalf("expected premium org to have %s", capability)
		}
	}
}

func TestCanceledFallsBackToFree(t *testing.T) {
	r, billingSvc, org := newFixture(t)
	upgrade(t, billingSvc, org.ID, "evt_1")

	payload, _ := json.Marshal(map[string]any{
		"id":   "evt_2",
		"type": "customer.subscription.deleted",
		"data": map[string]any{"object": map[string]any{"client_reference_id": org.ID}},
	})
	if _, err := billingSvc.ProcessWebhook(context.Background(), payload); err != nil {
		t.Fatalf("ProcessWebhook: %v", err)
	}

	got, err := r.Has(context.Background(), org.ID, "reports:export")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if got {
		t.Fatal("expected canceled subscription to lose premium capabilities")
	}
}

func TestEmptyCapabilityRejected(t *testing.T) {
	r, _, org := newFixture(t)

	if _, err := r.Has(context.Background(), org.ID, "  "); err == nil {
		t.Fatal("expected error for empty capability")
	}
}
