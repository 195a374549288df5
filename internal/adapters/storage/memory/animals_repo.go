package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"shelter-ops/internal/domain/animals"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) ListByOrg(ctx context.Context, orgID string, filter animals.ListFilter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.OrgID != orgID {
			continue
		}
		if !matchesFilter(a, filter) {
			continue
		}
		out = append(out, a)
	}

	// Ingresos más recientes primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].IntakeAt.After(out[j].IntakeAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *animalRepo) CountActiveByOrg(ctx context.Context, orgID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if a.OrgID != orgID {
			continue
		}
		switch a.Status {
		case animals.StatusAdopted, animals.StatusArchived:
			continue
		}
		n++
	}
	return n, nil
}

func matchesFilter(a animals.Animal, filter animals.ListFilter) bool {
	if len(filter.Species) > 0 {
		found := false
		for _, sp := range filter.Species {
			if a.Species == sp {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, st := range filter.Statuses {
			if a.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		if !strings.Contains(strings.ToLower(a.Name), q) &&
			!strings.Contains(strings.ToLower(a.Breed), q) {
			return false
		}
	}
	return true
}
