package medical

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
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

type CreateRecordInput struct {
	Type       RecordType
	OccurredAt time.Time
	Title      string
	Notes      string
	Product    string
	Dose       string
}

func (s *Service) CreateRecord(ctx context.Context, orgID, animalID, actorMemberID string, in CreateRecordInput) (Record, error) {
	orgID = strings.TrimSpace(orgID)
	animalID = strings.TrimSpace(animalID)
	actorMemberID = strings.TrimSpace(actorMemberID)

	if orgID == "" || animalID == "" || actorMemberID == "" {
		return Record{}, ErrInvalidInput
	}
	if !validRecordType(in.Type) {
		return Record{}, ErrInvalidInput
	}
	if in.OccurredAt.IsZero() {
		return Record{}, ErrInvalidInput
	}

	rec := Record{
		ID:            uuid.NewString(),
		OrgID:         orgID,
		AnimalID:      animalID,
		Type:          in.Type,
		OccurredAt:    in.OccurredAt,
		RecordedAt:    s.now(),
		Title:         strings.TrimSpace(in.Title),
		Notes:         strings.TrimSpace(in.Notes),
		Product:       strings.TrimSpace(in.Product),
		Dose:          strings.TrimSpace(in.Dose),
		ActorMemberID: actorMemberID,
		Status:        RecordStatusActive,
	}

	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) GetRecordByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrInvalidInput
	}
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListRecords(ctx context.Context, animalID string, filter ListFilter) ([]Record, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListRecordsByAnimal(ctx, animalID, filter)
}

// VoidRecord anula el registro (no se borra).
func (s *Service) VoidRecord(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrInvalidInput
	}
	if err := s.repo.VoidRecord(ctx, id); err != nil {
		return Record{}, ErrNotFound
	}
	return s.repo.GetRecordByID(ctx, id)
}

type ScheduleTaskInput struct {
	Type  RecordType
	Title string
	DueOn time.Time
}

func (s *Service) ScheduleTask(ctx context.Context, orgID, animalID string, in ScheduleTaskInput) (Task, error) {
	orgID = strings.TrimSpace(orgID)
	animalID = strings.TrimSpace(animalID)

	if orgID == "" || animalID == "" {
		return Task{}, ErrInvalidInput
	}
	if !validRecordType(in.Type) {
		return Task{}, ErrInvalidInput
	}
	if in.DueOn.IsZero() {
		return Task{}, ErrInvalidInput
	}

	now := s.now()
	t := Task{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		AnimalID:  animalID,
		Type:      in.Type,
		Title:     strings.TrimSpace(in.Title),
		DueOn:     truncateToDay(in.DueOn),
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *Service) GetTaskByID(ctx context.Context, id string) (Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, ErrInvalidInput
	}
	t, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// CompleteTask marca la tarea done (idempotente).
// recordID opcional: el registro clínico creado al completar.
func (s *Service) CompleteTask(ctx context.Context, id, recordID string) (Task, error) {
	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if t.Status == TaskStatusDone {
		return t, nil
	}

	now := s.now()
	t.Status = TaskStatusDone
	t.CompletedAt = &now
	t.UpdatedAt = now
	if rid := strings.TrimSpace(recordID); rid != "" {
		t.RecordID = rid
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, orgID string, filter TaskFilter) ([]Task, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListTasksByOrg(ctx, orgID, filter)
}

// SweepOverdue marca overdue toda tarea pending con DueOn anterior a hoy.
// Lo corre el scheduler; devuelve las tareas que cambiaron.
func (s *Service) SweepOverdue(ctx context.Context) ([]Task, error) {
	today := truncateToDay(s.now())

	due, err := s.repo.ListDueTasks(ctx, today)
	if err != nil {
		return nil, err
	}

	flipped := make([]Task, 0)
	for _, t := range due {
		if t.Status != TaskStatusPending {
			continue
		}
		if !t.DueOn.Before(today) {
			continue
		}
		t.Status = TaskStatusOverdue
		t.UpdatedAt = s.now()
		if err := s.repo.UpdateTask(ctx, t); err != nil {
			continue // best-effort: el próximo sweep lo reintenta
		}
		flipped = append(flipped, t)
	}

	return flipped, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
