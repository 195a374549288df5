package adoptions_test

import (
	"context"
	"errors"
	"testing"

	"shelter-ops/internal/adapters/storage/memory"
	"shelter-ops/internal/domain/adoptions"
	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/fosters"
	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/ports/payments"
)

type allowAllCaps struct{}

func (allowAllCaps) Has(context.Context, string, string) (bool, error) { return true, nil }

type fakeCheckout struct {
	calls []payments.CheckoutInput
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, in payments.CheckoutInput) (payments.CheckoutSession, error) {
	f.calls = append(f.calls, in)
	return payments.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}

type fixture struct {
	svc        *adoptions.Service
	animalsSvc *animals.Service
	fostersSvc *fosters.Service
	membersSvc *members.Service
	checkout   *fakeCheckout
}

func newFixture() fixture {
	animalsSvc := animals.NewService(memory.NewAnimalRepo(), allowAllCaps{})
	membersSvc := members.NewService(memory.NewMemberRepo())
	fostersSvc := fosters.NewService(memory.NewFosterRepo(), animalsSvc, membersSvc)
	checkout := &fakeCheckout{}
	svc := adoptions.NewService(memory.NewAdoptionRepo(), animalsSvc, fostersSvc, checkout)
	return fixture{
		svc:        svc,
		animalsSvc: animalsSvc,
		fostersSvc: fostersSvc,
		membersSvc: membersSvc,
		checkout:   checkout,
	}
}

func (f fixture) intake(t *testing.T, orgID, name string) animals.Animal {
	t.Helper()
	a, err := f.animalsSvc.Intake(context.Background(), orgID, animals.IntakeInput{
		Name:    name,
		Species: "cat",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	return a
}

func (f fixture) submit(t *testing.T, orgID, animalID string, feeCents int64) adoptions.Application {
	t.Helper()
	app, err := f.svc.Submit(context.Background(), orgID, adoptions.SubmitInput{
		AnimalID:       animalID,
		ApplicantName:  "Ana Pérez",
		ApplicantEmail: "ana@example.com",
		FeeCents:       feeCents,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return app
}

func TestSubmitRequiresAdoptableAnimal(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")

	if _, err := f.animalsSvc.Archive(context.Background(), a.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	_, err := f.svc.Submit(context.Background(), "org-1", adoptions.SubmitInput{
		AnimalID:       a.ID,
		ApplicantName:  "Ana",
		ApplicantEmail: "ana@example.com",
	})
	if !errors.Is(err, adoptions.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestApprovePutsAnimalOnHold(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")
	app := f.submit(t, "org-1", a.ID, 0)

	approved, err := f.svc.Approve(context.Background(), app.ID, "member-admin")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != adoptions.StatusApproved || approved.DecidedAt == nil {
		t.Fatalf("expected approved with DecidedAt, got %+v", approved)
	}
	if approved.DecidedBy != "member-admin" {
		t.Fatalf("expected decider recorded, got %q", approved.DecidedBy)
	}

	got, _ := f.animalsSvc.GetByID(context.Background(), a.ID)
	if got.Status != animals.StatusHold {
		t.Fatalf("expected animal on hold, got %s", got.Status)
	}
}

func TestApproveRejectsNonPending(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")
	app := f.submit(t, "org-1", a.ID, 0)

	if _, err := f.svc.Approve(context.Background(), app.ID, "member-admin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	_, err := f.svc.Approve(context.Background(), app.ID, "member-admin")
	if !errors.Is(err, adoptions.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestDenyReleasesHoldUnlessAnotherApproved(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")
	first := f.submit(t, "org-1", a.ID, 0)
	second := f.submit(t, "org-1", a.ID, 0)

	if _, err := f.svc.Approve(context.Background(), first.ID, "member-admin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// Rechazar la segunda no libera el hold: la primera sigue aprobada
	if _, err := f.svc.Deny(context.Background(), second.ID, "member-admin"); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	got, _ := f.animalsSvc.GetByID(context.Background(), a.ID)
	if got.Status != animals.StatusHold {
		t.Fatalf("expected hold kept, got %s", got.Status)
	}
}

func TestDenyReleasesHoldWhenUnclaimed(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")
	app := f.submit(t, "org-1", a.ID, 0)

	// Hold puesto fuera del flujo de adopciones (ej. revisión médica)
	if _, err := f.animalsSvc.SetStatus(context.Background(), a.ID, animals.StatusHold); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if _, err := f.svc.Deny(context.Background(), app.ID, "member-admin"); err != nil {
		t.Fatalf("Deny: %v", err)
	}

	got, _ := f.animalsSvc.GetByID(context.Background(), a.ID)
	if got.Status != animals.StatusAvailable {
		t.Fatalf("expected hold released, got %s", got.Status)
	}
}

func TestCompleteMarksAdoptedAndEndsFoster(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")

	// Miembro foster activo con el animal colocado
	m, err := f.membersSvc.Invite(context.Background(), members.InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Email:  "user-1@example.com",
		Role:   members.RoleFoster,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if m, err = f.membersSvc.Accept(context.Background(), m.ID, "user-1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := f.fostersSvc.Start(context.Background(), fosters.StartInput{
		OrgID: "org-1", AnimalID: a.ID, MemberID: m.ID,
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Un animal fostered puede ser adoptado
	app := f.submit(t, "org-1", a.ID, 0)
	if _, err := f.svc.Approve(context.Background(), app.ID, "member-admin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	done, err := f.svc.Complete(context.Background(), app.ID, adoptions.CompleteInput{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != adoptions.StatusCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed, got %+v", done)
	}

	got, _ := f.animalsSvc.GetByID(context.Background(), a.ID)
	if got.Status != animals.StatusAdopted {
		t.Fatalf("expected adopted, got %s", got.Status)
	}

	p, err := f.fostersSvc.ActivePlacement(context.Background(), a.ID)
	if err == nil && p.ID != "" {
		t.Fatalf("expected no active placement, got %+v", p)
	}
}

func TestCompleteWithCheckoutForwardsFee(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Michi")
	app := f.submit(t, "org-1", a.ID, 7500)

	if _, err := f.svc.Approve(context.Background(), app.ID, "member-admin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	done, err := f.svc.Complete(context.Background(), app.ID, adoptions.CompleteInput{WithCheckout: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.CheckoutRef != "cs_test_1" {
		t.Fatalf("expected checkout ref recorded, got %q", done.CheckoutRef)
	}

	if len(f.checkout.calls) != 1 {
		t.Fatalf("expected one checkout call, got %d", len(f.checkout.calls))
	}
	if f.checkout.calls[0].AmountCents != 7500 {
		t.Fatalf("expected fee forwarded as-is, got %d", f.checkout.calls[0].AmountCents)
	}
	if f.checkout.calls[0].Reference != app.ID {
		t.Fatalf("expected application id as reference, got %q", f.checkout.calls[0].Reference)
	}
}
