package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"shelter-ops/internal/domain/medical"
)

type medicalRepo struct {
	mu      sync.RWMutex
	records map[string]medical.Record
	tasks   map[string]medical.Task
}

func NewMedicalRepo() medical.Repository {
	return &medicalRepo{
		records: make(map[string]medical.Record),
		tasks:   make(map[string]medical.Task),
	}
}

func (r *medicalRepo) CreateRecord(ctx context.Context, rec medical.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.records[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.records[rec.ID] = rec
	return nil
}

func (r *medicalRepo) GetRecordByID(ctx context.Context, id string) (medical.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return medical.Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *medicalRepo) ListRecordsByAnimal(ctx context.Context, animalID string, filter medical.ListFilter) ([]medical.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Record, 0)
	for _, rec := range r.records {
		if rec.AnimalID != animalID {
			continue
		}
		if !matchesRecordFilter(rec, filter) {
			continue
		}
		out = append(out, rec)
	}

	// Timeline: lo más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *medicalRepo) VoidRecord(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = medical.RecordStatusVoided
	r.records[id] = rec
	return nil
}

func (r *medicalRepo) CreateTask(ctx context.Context, t medical.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("task id required")
	}
	if _, exists := r.tasks[t.ID]; exists {
		return errors.New("task already exists")
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *medicalRepo) UpdateTask(ctx context.Context, t medical.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.ID]; !exists {
		return ErrNotFound
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *medicalRepo) GetTaskByID(ctx context.Context, id string) (medical.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return medical.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *medicalRepo) ListTasksByOrg(ctx context.Context, orgID string, filter medical.TaskFilter) ([]medical.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Task, 0)
	for _, t := range r.tasks {
		if t.OrgID != orgID {
			continue
		}
		if !matchesTaskFilter(t, filter) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DueOn.Before(out[j].DueOn)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *medicalRepo) ListDueTasks(ctx context.Context, before time.Time) ([]medical.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Task, 0)
	for _, t := range r.tasks {
		if t.Status == medical.TaskStatusDone {
			continue
		}
		if t.DueOn.After(before) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DueOn.Before(out[j].DueOn)
	})
	return out, nil
}

func matchesRecordFilter(rec medical.Record, filter medical.ListFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if rec.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.From != nil && rec.OccurredAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && rec.OccurredAt.After(*filter.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		if !strings.Contains(strings.ToLower(rec.Title), q) &&
			!strings.Contains(strings.ToLower(rec.Notes), q) &&
			!strings.Contains(strings.ToLower(rec.Product), q) {
			return false
		}
	}
	return true
}

func matchesTaskFilter(t medical.Task, filter medical.TaskFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, st := range filter.Statuses {
			if t.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.AnimalID != "" && t.AnimalID != filter.AnimalID {
		return false
	}
	if filter.DueBefore != nil && t.DueOn.After(*filter.DueBefore) {
		return false
	}
	return true
}
