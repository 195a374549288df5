package animals

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Animal
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Animal{}}
}

func (r *testRepo) Create(ctx context.Context, a Animal) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if a.OrgID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) CountActiveByOrg(ctx context.Context, orgID string) (int, error) {
	n := 0
	for _, a := range r.byID {
		if a.OrgID == orgID && a.Status != StatusArchived && a.Status != StatusAdopted {
			n++
		}
	}
	return n, nil
}

// testCaps permite simular el gating por tier.
type testCaps struct {
	allowed map[string]bool
}

func (c *testCaps) Has(ctx context.Context, orgID, capability string) (bool, error) {
	return c.allowed[capability], nil
}

func newTestService(caps *testCaps) (*Service, *testRepo) {
	repo := newTestRepo()
	if caps == nil {
		caps = &testCaps{allowed: map[string]bool{}}
	}
	return NewService(repo, caps), repo
}

func TestService_Intake_Defaults(t *testing.T) {
	svc, _ := newTestService(nil)

	now := time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := svc.Intake(context.Background(), "org-1", IntakeInput{
		Name: "Milo",
	})
	if err != nil {
		t.Fatalf("Intake error: %v", err)
	}
	if a.Status != StatusAvailable {
		t.Fatalf("expected available, got %s", a.Status)
	}
	if a.Species != SpeciesOther || a.Sex != SexUnknown || a.IntakeKind != IntakeStray {
		t.Fatalf("unexpected defaults: %s/%s/%s", a.Species, a.Sex, a.IntakeKind)
	}
	if !a.IntakeAt.Equal(now) {
		t.Fatalf("expected intake_at defaulted to now")
	}
}

func TestService_Intake_RejectsUnknownSpecies(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Intake(context.Background(), "org-1", IntakeInput{
		Name:    "Milo",
		Species: "dragon",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Intake_FreeTierCap(t *testing.T) {
	s, r := newTestService(nil)
	now := time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// Llenar hasta el cap
	for i := 0; i < freeTierAnimalCap; i++ {
		a := Animal{ID: animalID(i), OrgID: "org-1", Status: StatusAvailable}
		_ = r.Create(context.Background(), a)
	}

	_, err := s.Intake(context.Background(), "org-1", IntakeInput{Name: "One Too Many"})
	if err != ErrTierLimit {
		t.Fatalf("expected ErrTierLimit, got %v", err)
	}

	// Animales adoptados/archivados no cuentan para el cap
	for i := 0; i < 5; i++ {
		a, _ := r.GetByID(context.Background(), animalID(i))
		a.Status = StatusAdopted
		_ = r.Update(context.Background(), a)
	}
	if _, err := s.Intake(context.Background(), "org-1", IntakeInput{Name: "Fits Now"}); err != nil {
		t.Fatalf("expected intake to pass after adoptions, got %v", err)
	}
}

func TestService_Intake_UnlimitedCapability_SkipsCap(t *testing.T) {
	caps := &testCaps{allowed: map[string]bool{"animals:unlimited": true}}
	s, r := newTestService(caps)

	for i := 0; i < freeTierAnimalCap+10; i++ {
		a := Animal{ID: animalID(i), OrgID: "org-1", Status: StatusAvailable}
		_ = r.Create(context.Background(), a)
	}

	if _, err := s.Intake(context.Background(), "org-1", IntakeInput{Name: "Premium"}); err != nil {
		t.Fatalf("expected premium org to skip cap, got %v", err)
	}
}

func TestService_UpdateProfile_BirthDateNullClears(t *testing.T) {
	s, _ := newTestService(nil)

	bd := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	a, err := s.Intake(context.Background(), "org-1", IntakeInput{
		Name:      "Luna",
		BirthDate: &bd,
	})
	if err != nil {
		t.Fatalf("Intake error: %v", err)
	}
	if a.BirthDate == nil {
		t.Fatalf("expected birth date set")
	}

	// Campo no enviado: no toca
	updated, err := s.UpdateProfile(context.Background(), a.ID, UpdateProfileInput{})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if updated.BirthDate == nil {
		t.Fatalf("birth date should be untouched when absent")
	}

	// null explícito: limpia
	updated, err = s.UpdateProfile(context.Background(), a.ID, UpdateProfileInput{
		BirthDate: PatchDate{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if updated.BirthDate != nil {
		t.Fatalf("expected birth date cleared")
	}
}

func TestService_Archive_Idempotent(t *testing.T) {
	s, _ := newTestService(nil)

	a, err := s.Intake(context.Background(), "org-1", IntakeInput{Name: "Rex"})
	if err != nil {
		t.Fatalf("Intake error: %v", err)
	}

	a1, err := s.Archive(context.Background(), a.ID)
	if err != nil || a1.Status != StatusArchived {
		t.Fatalf("Archive error: %v status=%s", err, a1.Status)
	}
	a2, err := s.Archive(context.Background(), a.ID)
	if err != nil || a2.Status != StatusArchived {
		t.Fatalf("Archive should be idempotent: %v status=%s", err, a2.Status)
	}
}

func animalID(i int) string {
	return fmt.Sprintf("animal-%d", i)
}
