package adoptions

import "context"

type Repository interface {
	Create(ctx context.Context, app Application) error
	Update(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Application, error)
	ListByAnimal(ctx context.Context, animalID string) ([]Application, error)
}

type ListFilter struct {
	Status Status
	Limit  int
}
