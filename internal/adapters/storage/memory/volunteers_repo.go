package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"shelter-ops/internal/domain/volunteers"
)

type volunteerRepo struct {
	mu   sync.RWMutex
	byID map[string]volunteers.Activity
}

func NewVolunteerRepo() volunteers.Repository {
	return &volunteerRepo{
		byID: make(map[string]volunteers.Activity),
	}
}

func (r *volunteerRepo) Create(ctx context.Context, a volunteers.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("activity id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("activity already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *volunteerRepo) ListByMember(ctx context.Context, memberID string, filter volunteers.ListFilter) ([]volunteers.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]volunteers.Activity, 0)
	for _, a := range r.byID {
		if a.MemberID != memberID {
			continue
		}
		if !matchesActivityFilter(a, filter) {
			continue
		}
		out = append(out, a)
	}
	sortActivities(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *volunteerRepo) ListByOrg(ctx context.Context, orgID string, filter volunteers.ListFilter) ([]volunteers.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]volunteers.Activity, 0)
	for _, a := range r.byID {
		if a.OrgID != orgID {
			continue
		}
		if !matchesActivityFilter(a, filter) {
			continue
		}
		out = append(out, a)
	}
	sortActivities(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *volunteerRepo) HoursTotal(ctx context.Context, orgID string, from, to *time.Time) (map[string]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]float64)
	for _, a := range r.byID {
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

func matchesActivityFilter(a volunteers.Activity, filter volunteers.ListFilter) bool {
	if filter.Kind != "" && a.Kind != filter.Kind {
		return false
	}
	if filter.From != nil && a.OccurredAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && a.OccurredAt.After(*filter.To) {
		return false
	}
	return true
}

func sortActivities(out []volunteers.Activity) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
}
