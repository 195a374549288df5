package reports

import (
	"context"
	"time"
)

// Repository corre los agregados directamente en el storage.
type Repository interface {
	CountsByStatus(ctx context.Context, orgID string) ([]StatusCount, error)
	// IntakeOutcomeByMonth cubre los últimos months meses hasta until.
	IntakeOutcomeByMonth(ctx context.Context, orgID string, until time.Time, months int) ([]MonthlyFlow, error)
	VolunteerHours(ctx context.Context, orgID string, from, to *time.Time) ([]MemberHours, error)
}
