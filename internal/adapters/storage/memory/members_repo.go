package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"shelter-ops/internal/domain/members"
)

type memberRepo struct {
	mu   sync.RWMutex
	byID map[string]members.Member
}

func NewMemberRepo() members.Repository {
	return &memberRepo{
		byID: make(map[string]members.Member),
	}
}

func (r *memberRepo) Create(ctx context.Context, m members.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("member id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("member already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memberRepo) Update(ctx context.Context, m members.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return members.Member{}, ErrNotFound
	}
	return m, nil
}

func (r *memberRepo) ListByOrg(ctx context.Context, orgID string) ([]members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]members.Member, 0)
	for _, m := range r.byID {
		if m.OrgID == orgID {
			out = append(out, m)
		}
	}
	sortMembers(out)
	return out, nil
}

func (r *memberRepo) ListByUser(ctx context.Context, userID string) ([]members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]members.Member, 0)
	for _, m := range r.byID {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sortMembers(out)
	return out, nil
}

func (r *memberRepo) GetActiveMember(ctx context.Context, orgID, userID string) (members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if m.OrgID == orgID && m.UserID == userID && m.Status == members.StatusActive {
			return m, nil
		}
	}
	return members.Member{}, ErrNotFound
}

// Orden estable por created_at asc (solo para consistencia en dev)
func sortMembers(out []members.Member) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
