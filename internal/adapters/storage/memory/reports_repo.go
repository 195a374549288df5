package memory

import (
	"context"
	"sort"
	"time"

	"shelter-ops/internal/domain/adoptions"
	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/reports"
	"shelter-ops/internal/domain/volunteers"
)

// reportsRepo agrega en memoria recorriendo los otros repos. En
// postgres esto son GROUP BY; acá alcanza con iterar.
type reportsRepo struct {
	animals    animals.Repository
	adoptions  adoptions.Repository
	volunteers volunteers.Repository
}

func NewReportsRepo(animalsRepo animals.Repository, adoptionsRepo adoptions.Repository, volunteersRepo volunteers.Repository) reports.Repository {
	return &reportsRepo{
		animals:    animalsRepo,
		adoptions:  adoptionsRepo,
		volunteers: volunteersRepo,
	}
}

func (r *reportsRepo) CountsByStatus(ctx context.Context, orgID string) ([]reports.StatusCount, error) {
	all, err := r.animals.ListByOrg(ctx, orgID, animals.ListFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, a := range all {
		counts[string(a.Status)]++
	}

	out := make([]reports.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, reports.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r *reportsRepo) IntakeOutcomeByMonth(ctx context.Context, orgID string, until time.Time, months int) ([]reports.MonthlyFlow, error) {
	all, err := r.animals.ListByOrg(ctx, orgID, animals.ListFilter{})
	if err != nil {
		return nil, err
	}
	apps, err := r.adoptions.ListByOrg(ctx, orgID, adoptions.ListFilter{Status: adoptions.StatusCompleted})
	if err != nil {
		return nil, err
	}

	// Buckets YYYY-MM, del más viejo al actual
	start := time.Date(until.Year(), until.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	byMonth := make(map[string]*reports.MonthlyFlow, months)
	out := make([]reports.MonthlyFlow, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		out[i] = reports.MonthlyFlow{Month: key}
		byMonth[key] = &out[i]
	}

	for _, a := range all {
		if row, ok := byMonth[a.IntakeAt.UTC().Format("2006-01")]; ok {
			row.Intakes++
		}
	}
	for _, app := range apps {
		if app.CompletedAt == nil {
			continue
		}
		if row, ok := byMonth[app.CompletedAt.UTC().Format("2006-01")]; ok {
			row.Adoptions++
		}
	}

	return out, nil
}

func (r *reportsRepo) VolunteerHours(ctx context.Context, orgID string, from, to *time.Time) ([]reports.MemberHours, error) {
	totals, err := r.volunteers.HoursTotal(ctx, orgID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]reports.MemberHours, 0, len(totals))
	for memberID, hours := range totals {
		out = append(out, reports.MemberHours{MemberID: memberID, Hours: hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hours > out[j].Hours })
	return out, nil
}
