package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Animal, error)
	CountActiveByOrg(ctx context.Context, orgID string) (int, error)
}

type ListFilter struct {
	Species  []Species
	Statuses []AnimalStatus
	Query    string
	Limit    int
}
