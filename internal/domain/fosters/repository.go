package fosters

import "context"

type Repository interface {
	Create(ctx context.Context, p Placement) error
	Update(ctx context.Context, p Placement) error
	GetByID(ctx context.Context, id string) (Placement, error)
	ListByAnimal(ctx context.Context, animalID string) ([]Placement, error)
	ListByMember(ctx context.Context, memberID string) ([]Placement, error)
	GetActiveByAnimal(ctx context.Context, animalID string) (Placement, error)
}
