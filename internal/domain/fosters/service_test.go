package fosters_test

import (
	"context"
	"errors"
	"testing"

	"shelter-ops/internal/adapters/storage/memory"
	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/fosters"
	"shelter-ops/internal/domain/members"
)

type allowAllCaps struct{}

func (allowAllCaps) Has(context.Context, string, string) (bool, error) { return true, nil }

type fixture struct {
	svc        *fosters.Service
	animalsSvc *animals.Service
	membersSvc *members.Service
}

func newFixture() fixture {
	animalsSvc := animals.NewService(memory.NewAnimalRepo(), allowAllCaps{})
	membersSvc := members.NewService(memory.NewMemberRepo())
	svc := fosters.NewService(memory.NewFosterRepo(), animalsSvc, membersSvc)
	return fixture{svc: svc, animalsSvc: animalsSvc, membersSvc: membersSvc}
}

func (f fixture) intake(t *testing.T, orgID, name string) animals.Animal {
	t.Helper()
	a, err := f.animalsSvc.Intake(context.Background(), orgID, animals.IntakeInput{
		Name:    name,
		Species: "dog",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	return a
}

func (f fixture) activeMember(t *testing.T, orgID, userID string, role members.Role) members.Member {
	t.Helper()
	m, err := f.membersSvc.Invite(context.Background(), members.InviteInput{
		OrgID:  orgID,
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	m, err = f.membersSvc.Accept(context.Background(), m.ID, userID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return m
}

func TestStartMovesAnimalToFostered(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Luna")
	m := f.activeMember(t, "org-1", "user-1", members.RoleFoster)

	p, err := f.svc.Start(context.Background(), fosters.StartInput{
		OrgID:    "org-1",
		AnimalID: a.ID,
		MemberID: m.ID,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.Status != fosters.StatusActive {
		t.Fatalf("expected active placement, got %s", p.Status)
	}

	got, err := f.animalsSvc.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != animals.StatusFostered {
		t.Fatalf("expected animal fostered, got %s", got.Status)
	}
}

func TestStartRejectsSecondActivePlacement(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Luna")
	m1 := f.activeMember(t, "org-1", "user-1", members.RoleFoster)
	m2 := f.activeMember(t, "org-1", "user-2", members.RoleFoster)

	if _, err := f.svc.Start(context.Background(), fosters.StartInput{
		OrgID: "org-1", AnimalID: a.ID, MemberID: m1.ID,
	}); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	_, err := f.svc.Start(context.Background(), fosters.StartInput{
		OrgID: "org-1", AnimalID: a.ID, MemberID: m2.ID,
	})
	if !errors.Is(err, fosters.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestStartRejectsVolunteer(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Luna")
	m := f.activeMember(t, "org-1", "user-1", members.RoleVolunteer)

	_, err := f.svc.Start(context.Background(), fosters.StartInput{
		OrgID: "org-1", AnimalID: a.ID, MemberID: m.ID,
	})
	if !errors.Is(err, fosters.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestStartRejectsCrossOrgAnimal(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-2", "Luna")
	m := f.activeMember(t, "org-1", "user-1", members.RoleFoster)

	_, err := f.svc.Start(context.Background(), fosters.StartInput{
		OrgID: "org-1", AnimalID: a.ID, MemberID: m.ID,
	})
	if !errors.Is(err, fosters.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEndReturnsAnimalToAvailable(t *testing.T) {
	f := newFixture()
	a := f.intake(t, "org-1", "Luna")
	m := f.activeMember(t, "org-1", "user-1", members.RoleFoster)

	p, err := f.svc.Start(context.Background(), fosters.StartInput{
		OrgID: "org-1", AnimalID: a.ID, MemberID: m.ID,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	ended, err := f.svc.End(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if ended.Status != fosters.StatusEnded || ended.EndedAt == nil {
		t.Fatalf("expected ended placement, got %+v", ended)
	}

	got, _ := f.animalsSvc.GetByID(context.Background(), a.ID)
	if got.Status != animals.StatusAvailable {
		t.Fatalf("expected animal available again, got %s", got.Status)
	}

	// End es idempotente
	again, err := f.svc.End(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("End twice: %v", err)
	}
	if again.Status != fosters.StatusEnded {
		t.Fatalf("expected still ended, got %s", again.Status)
	}
}
