package volunteers

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	activities []Activity
}

func (r *testRepo) Create(_ context.Context, a Activity) error {
	r.activities = append(r.activities, a)
	return nil
}

func (r *testRepo) ListByMember(_ context.Context, memberID string, _ ListFilter) ([]Activity, error) {
	out := make([]Activity, 0)
	for _, a := range r.activities {
		if a.MemberID == memberID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListByOrg(_ context.Context, orgID string, _ ListFilter) ([]Activity, error) {
	out := make([]Activity, 0)
	for _, a := range r.activities {
		if a.OrgID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) HoursTotal(_ context.Context, orgID string, from, to *time.Time) (map[string]float64, error) {
	totals := make(map[string]float64)
	for _, a := range r.activities {
		if a.OrgID != orgID {
			continue
		}
		if from != nil && a.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && a.OccurredAt.After(*to) {
			continue
		}
		totals[a.MemberID] += a.Hours
	}
	return totals, nil
}

func newTestService(repo *testRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestLogDefaultsOccurredAtToNow(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&testRepo{}, now)

	a, err := svc.Log(context.Background(), "org-1", "member-1", LogInput{
		Kind:  KindWalking,
		Hours: 1.5,
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !a.OccurredAt.Equal(now) {
		t.Fatalf("expected OccurredAt defaulted to now, got %v", a.OccurredAt)
	}
}

func TestLogRejectsHoursOutOfRange(t *testing.T) {
	svc := newTestService(&testRepo{}, time.Now())

	for _, hours := range []float64{0, -2, 25} {
		_, err := svc.Log(context.Background(), "org-1", "member-1", LogInput{
			Kind:  KindCleaning,
			Hours: hours,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("hours=%v: expected ErrInvalidInput, got %v", hours, err)
		}
	}
}

func TestLogRejectsUnknownKind(t *testing.T) {
	svc := newTestService(&testRepo{}, time.Now())

	_, err := svc.Log(context.Background(), "org-1", "member-1", LogInput{
		Kind:  Kind("gardening"),
		Hours: 2,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestHoursTotalWindow(t *testing.T) {
	now := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)
	repo := &testRepo{}
	svc := newTestService(repo, now)

	log := func(memberID string, hours float64, occurred time.Time) {
		t.Helper()
		if _, err := svc.Log(context.Background(), "org-1", memberID, LogInput{
			Kind:       KindTransport,
			Hours:      hours,
			OccurredAt: occurred,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	log("member-1", 2, now.AddDate(0, 0, -1))
	log("member-1", 3, now.AddDate(0, 0, -10))
	log("member-2", 4, now.AddDate(0, 0, -2))
	log("member-1", 5, now.AddDate(0, -2, 0)) // fuera de la ventana

	from := now.AddDate(0, -1, 0)
	totals, err := svc.HoursTotal(context.Background(), "org-1", &from, &now)
	if err != nil {
		t.Fatalf("HoursTotal: %v", err)
	}
	if totals["member-1"] != 5 {
		t.Fatalf("expected member-1=5 hours in window, got %v", totals["member-1"])
	}
	if totals["member-2"] != 4 {
		t.Fatalf("expected member-2=4 hours, got %v", totals["member-2"])
	}
}
