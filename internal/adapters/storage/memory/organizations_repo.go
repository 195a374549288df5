package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"shelter-ops/internal/domain/organizations"
)

type orgRepo struct {
	mu   sync.RWMutex
	byID map[string]organizations.Organization
}

func NewOrganizationRepo() organizations.Repository {
	return &orgRepo{
		byID: make(map[string]organizations.Organization),
	}
}

func (r *orgRepo) Create(ctx context.Context, o organizations.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("org id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return errors.New("org already exists")
	}
	r.byID[o.ID] = o
	return nil
}

func (r *orgRepo) Update(ctx context.Context, o organizations.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; !exists {
		return ErrNotFound
	}
	r.byID[o.ID] = o
	return nil
}

func (r *orgRepo) GetByID(ctx context.Context, id string) (organizations.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return organizations.Organization{}, ErrNotFound
	}
	return o, nil
}
