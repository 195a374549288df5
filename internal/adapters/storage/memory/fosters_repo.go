package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"shelter-ops/internal/domain/fosters"
)

type fosterRepo struct {
	mu   sync.RWMutex
	byID map[string]fosters.Placement
}

func NewFosterRepo() fosters.Repository {
	return &fosterRepo{
		byID: make(map[string]fosters.Placement),
	}
}

func (r *fosterRepo) Create(ctx context.Context, p fosters.Placement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("placement id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("placement already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fosterRepo) Update(ctx context.Context, p fosters.Placement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fosterRepo) GetByID(ctx context.Context, id string) (fosters.Placement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return fosters.Placement{}, ErrNotFound
	}
	return p, nil
}

func (r *fosterRepo) ListByAnimal(ctx context.Context, animalID string) ([]fosters.Placement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fosters.Placement, 0)
	for _, p := range r.byID {
		if p.AnimalID == animalID {
			out = append(out, p)
		}
	}
	sortPlacements(out)
	return out, nil
}

func (r *fosterRepo) ListByMember(ctx context.Context, memberID string) ([]fosters.Placement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fosters.Placement, 0)
	for _, p := range r.byID {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	sortPlacements(out)
	return out, nil
}

func (r *fosterRepo) GetActiveByAnimal(ctx context.Context, animalID string) (fosters.Placement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.AnimalID == animalID && p.Status == fosters.StatusActive {
			return p, nil
		}
	}
	return fosters.Placement{}, ErrNotFound
}

func sortPlacements(out []fosters.Placement) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
}
