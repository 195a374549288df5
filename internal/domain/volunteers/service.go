package volunteers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const maxHoursPerEntry = 24

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type LogInput struct {
	Kind       Kind
	Hours      float64
	OccurredAt time.Time
	Notes      string
}

func (s *Service) Log(ctx context.Context, orgID, memberID string, in LogInput) (Activity, error) {
	orgID = strings.TrimSpace(orgID)
	memberID = strings.TrimSpace(memberID)

	if orgID == "" || memberID == "" {
		return Activity{}, ErrInvalidInput
	}
	if !validKind(in.Kind) {
		return Activity{}, ErrInvalidInput
	}
	if in.Hours <= 0 || in.Hours > maxHoursPerEntry {
		return Activity{}, ErrInvalidInput
	}

	now := s.now()
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}

	a := Activity{
		ID:         uuid.NewString(),
		OrgID:      orgID,
		MemberID:   memberID,
		Kind:       in.Kind,
		Hours:      in.Hours,
		OccurredAt: occurred,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (s *Service) ListByMember(ctx context.Context, memberID string, filter ListFilter) ([]Activity, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMember(ctx, memberID, filter)
}

func (s *Service) ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Activity, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOrg(ctx, orgID, filter)
}

// HoursTotal devuelve horas acumuladas por miembro en la ventana.
func (s *Service) HoursTotal(ctx context.Context, orgID string, from, to *time.Time) (map[string]float64, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.HoursTotal(ctx, orgID, from, to)
}
