package volunteers

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Activity) error
	ListByMember(ctx context.Context, memberID string, filter ListFilter) ([]Activity, error)
	ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Activity, error)
	// HoursTotal suma horas por miembro dentro de la ventana (nil = sin límite).
	HoursTotal(ctx context.Context, orgID string, from, to *time.Time) (map[string]float64, error)
}

type ListFilter struct {
	Kind  Kind
	From  *time.Time
	To    *time.Time
	Limit int
}
