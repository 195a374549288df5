package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"shelter-ops/internal/domain/adoptions"
)

type adoptionRepo struct {
	mu   sync.RWMutex
	byID map[string]adoptions.Application
}

func NewAdoptionRepo() adoptions.Repository {
	return &adoptionRepo{
		byID: make(map[string]adoptions.Application),
	}
}

func (r *adoptionRepo) Create(ctx context.Context, app adoptions.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(app.ID) == "" {
		return errors.New("application id required")
	}
	if _, exists := r.byID[app.ID]; exists {
		return errors.New("application already exists")
	}
	r.byID[app.ID] = app
	return nil
}

func (r *adoptionRepo) Update(ctx context.Context, app adoptions.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[app.ID]; !exists {
		return ErrNotFound
	}
	r.byID[app.ID] = app
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.byID[id]
	if !ok {
		return adoptions.Application{}, ErrNotFound
	}
	return app, nil
}

func (r *adoptionRepo) ListByOrg(ctx context.Context, orgID string, filter adoptions.ListFilter) ([]adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, app := range r.byID {
		if app.OrgID != orgID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, app)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *adoptionRepo) ListByAnimal(ctx context.Context, animalID string) ([]adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, app := range r.byID {
		if app.AnimalID == animalID {
			out = append(out, app)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
