package members

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Member
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Member{}}
}

func (r *testRepo) Create(ctx context.Context, m Member) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Member) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[m.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Member, error) {
	m, ok := r.byID[id]
	if !ok {
		return Member{}, errRepoNotFound
	}
	return m, nil
}

func (r *testRepo) ListByOrg(ctx context.Context, orgID string) ([]Member, error) {
	out := make([]Member, 0)
	for _, m := range r.byID {
		if m.OrgID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Member, error) {
	out := make([]Member, 0)
	for _, m := range r.byID {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) GetActiveMember(ctx context.Context, orgID, userID string) (Member, error) {
	var winner Member
	has := false

	for _, m := range r.byID {
		if m.OrgID != orgID || m.UserID != userID || m.Status != StatusActive {
			continue
		}
		if !has || m.UpdatedAt.After(winner.UpdatedAt) {
			winner = m
			has = true
		}
	}

	if !has {
		return Member{}, errRepoNotFound
	}
	return winner, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Invite_DefaultRole_WhenEmpty(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Email:  "user1@example.com",
	})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if m.Status != StatusInvited {
		t.Fatalf("expected status invited, got %s", m.Status)
	}
	if m.Role != RoleVolunteer {
		t.Fatalf("expected default role volunteer, got %s", m.Role)
	}
	if m.CreatedAt != now || m.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Invite_RejectsUnknownRole(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Role:   Role("superuser"),
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Invite_Dedup_UpdatesSameMembership(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(5 * time.Minute)

	svc.now = func() time.Time { return now1 }
	m1, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Role:   RoleFoster,
	})
	if err != nil {
		t.Fatalf("Invite #1 error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	m2, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Role:   RoleStaff,
	})
	if err != nil {
		t.Fatalf("Invite #2 error: %v", err)
	}

	if m2.ID != m1.ID {
		t.Fatalf("expected same membership ID (dedup), got %s vs %s", m1.ID, m2.ID)
	}
	if m2.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on reinvite")
	}
	if m2.Role != RoleStaff {
		t.Fatalf("expected role updated to staff, got %s", m2.Role)
	}
}

func TestService_Invite_AfterRevoke_CreatesNewMembership(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	m1, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Role:   RoleStaff,
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	if _, err := svc.Revoke(context.Background(), m1.ID); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	m2, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Role:   RoleStaff,
	})
	if err != nil {
		t.Fatalf("re-Invite error: %v", err)
	}
	if m2.ID == m1.ID {
		t.Fatalf("expected a fresh membership after revoke")
	}
	if m2.Status != StatusInvited {
		t.Fatalf("expected invited, got %s", m2.Status)
	}
}

func TestService_Accept_SetsActive_AndIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(2 * time.Minute)

	svc.now = func() time.Time { return now1 }
	m, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
		Role:   RoleFoster,
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	accepted, err := svc.Accept(context.Background(), m.ID, "user-1")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if accepted.Status != StatusActive {
		t.Fatalf("expected active, got %s", accepted.Status)
	}

	// idempotente
	accepted2, err := svc.Accept(context.Background(), m.ID, "user-1")
	if err != nil {
		t.Fatalf("Accept #2 error: %v", err)
	}
	if accepted2.Status != StatusActive {
		t.Fatalf("expected active after idempotent accept, got %s", accepted2.Status)
	}
}

func TestService_Accept_WrongUser_Forbidden(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	m, err := svc.Invite(context.Background(), InviteInput{
		OrgID:  "org-1",
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	_, err = svc.Accept(context.Background(), m.ID, "someone-else")
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Accept_LeavesOnlyOneActive_ForOrgAndUser(t *testing.T) {
	// Valida el invariante: con data sucia (múltiples invites/activos),
	// al aceptar uno debe quedar exactamente 1 membresía activa.
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m1 := Member{
		ID:        "m1",
		OrgID:     "org-1",
		UserID:    "user-1",
		Role:      RoleVolunteer,
		Status:    StatusInvited,
		CreatedAt: now.Add(-10 * time.Minute),
		UpdatedAt: now.Add(-10 * time.Minute),
	}
	m2 := Member{
		ID:        "m2",
		OrgID:     "org-1",
		UserID:    "user-1",
		Role:      RoleVolunteer,
		Status:    StatusInvited,
		CreatedAt: now.Add(-5 * time.Minute),
		UpdatedAt: now.Add(-5 * time.Minute),
	}
	_ = repo.Create(context.Background(), m1)
	_ = repo.Create(context.Background(), m2)

	if _, err := svc.Accept(context.Background(), "m2", "user-1"); err != nil {
		t.Fatalf("Accept error: %v", err)
	}

	activeCount := 0
	for _, m := range repo.byID {
		if m.OrgID == "org-1" && m.UserID == "user-1" && m.Status == StatusActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly 1 active membership, got %d", activeCount)
	}
}

func TestRoleAtLeast_Ordering(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleStaff) {
		t.Fatalf("admin should satisfy staff")
	}
	if RoleAtLeast(RoleVolunteer, RoleFoster) {
		t.Fatalf("volunteer should not satisfy foster")
	}
	if !RoleAtLeast(RoleFoster, RoleFoster) {
		t.Fatalf("role should satisfy itself")
	}
	if RoleAtLeast(Role("nope"), RoleVolunteer) {
		t.Fatalf("unknown role should rank below everything")
	}
}
