package medical

import (
	"context"
	"time"
)

type Repository interface {
	CreateRecord(ctx context.Context, rec Record) error
	GetRecordByID(ctx context.Context, id string) (Record, error)
	ListRecordsByAnimal(ctx context.Context, animalID string, filter ListFilter) ([]Record, error)
	VoidRecord(ctx context.Context, id string) error

	CreateTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, t Task) error
	GetTaskByID(ctx context.Context, id string) (Task, error)
	ListTasksByOrg(ctx context.Context, orgID string, filter TaskFilter) ([]Task, error)
	// ListDueTasks devuelve tareas pending/overdue con DueOn <= before, para todas las orgs.
	ListDueTasks(ctx context.Context, before time.Time) ([]Task, error)
}

type ListFilter struct {
	Types []RecordType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}

type TaskFilter struct {
	Statuses  []TaskStatus
	AnimalID  string
	DueBefore *time.Time
	Limit     int
}
