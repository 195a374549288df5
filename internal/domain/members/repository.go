package members

import "context"

type Repository interface {
	Create(ctx context.Context, m Member) error
	Update(ctx context.Context, m Member) error
	GetByID(ctx context.Context, id string) (Member, error)
	ListByOrg(ctx context.Context, orgID string) ([]Member, error)
	ListByUser(ctx context.Context, userID string) ([]Member, error)
	GetActiveMember(ctx context.Context, orgID, userID string) (Member, error)
}
