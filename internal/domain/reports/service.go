package reports

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const (
	defaultMonths = 6
	maxMonths     = 24
)

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

func (s *Service) CountsByStatus(ctx context.Context, orgID string) ([]StatusCount, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.CountsByStatus(ctx, orgID)
}

func (s *Service) IntakeOutcomeByMonth(ctx context.Context, orgID string, months int) ([]MonthlyFlow, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	if months <= 0 {
		months = defaultMonths
	}
	if months > maxMonths {
		months = maxMonths
	}
	return s.repo.IntakeOutcomeByMonth(ctx, orgID, s.now(), months)
}

func (s *Service) VolunteerHours(ctx context.Context, orgID string, from, to *time.Time) ([]MemberHours, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.VolunteerHours(ctx, orgID, from, to)
}
