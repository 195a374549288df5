package reports

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/middleware"
	"shelter-ops/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

const (
	capView   = "reports:view"
	capExport = "reports:export"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service, caps capabilities.Resolver) {
	r.Route("/orgs/{orgID}/reports", func(rr chi.Router) {
		rr.Get("/animals-by-status", countsByStatusHandler(svc, membersSvc, caps))
		rr.Get("/intake-outcome", intakeOutcomeHandler(svc, membersSvc, caps))
		rr.Get("/volunteer-hours", volunteerHoursHandler(svc, membersSvc, caps))
	})
}

// authorize resuelve miembro staff+ y la capability del reporte.
// format=csv exige reports:export además de reports:view.
func authorize(r *http.Request, membersSvc *members.Service, caps capabilities.Resolver) (orgID string, asCSV bool, status int, errMsg string) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return "", false, http.StatusUnauthorized, "unauthorized"
	}

	orgID = chi.URLParam(r, "orgID")

	caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
	if err != nil || !members.RoleAtLeast(caller.Role, members.RoleStaff) {
		return "", false, http.StatusForbidden, "forbidden"
	}

	if ok, err := caps.Has(r.Context(), orgID, capView); err != nil || !ok {
		return "", false, http.StatusPaymentRequired, "reports not enabled for this organization"
	}

	asCSV = strings.EqualFold(r.URL.Query().Get("format"), "csv")
	if asCSV {
		if ok, err := caps.Has(r.Context(), orgID, capExport); err != nil || !ok {
			return "", false, http.StatusPaymentRequired, "csv export requires a premium subscription"
		}
	}

	return orgID, asCSV, 0, ""
}

// countsByStatusHandler godoc
// @Summary Animales por estado
// @Description Totales de animales agrupados por estado. format=csv exporta (requiere premium).
// @Tags reports
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Param format query string false "csv para exportar"
// @Success 200 {array} StatusCount
// @Failure 401 {string} string "unauthorized"
// @Failure 402 {string} string "capability no habilitada"
// @Failure 403 {string} string "forbidden"
// @Router /orgs/{orgID}/reports/animals-by-status [get]
func countsByStatusHandler(svc *Service, membersSvc *members.Service, caps capabilities.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, asCSV, status, msg := authorize(r, membersSvc, caps)
		if status != 0 {
			http.Error(w, msg, status)
			return
		}

		rows, err := svc.CountsByStatus(r.Context(), orgID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if asCSV {
			records := [][]string{{"status", "count"}}
			for _, row := range rows {
				records = append(records, []string{row.Status, strconv.Itoa(row.Count)})
			}
			writeCSV(w, "animals-by-status.csv", records)
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func intakeOutcomeHandler(svc *Service, membersSvc *members.Service, caps capabilities.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, asCSV, status, msg := authorize(r, membersSvc, caps)
		if status != 0 {
			http.Error(w, msg, status)
			return
		}

		months := 0
		if v := r.URL.Query().Get("months"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				months = n
			}
		}

		rows, err := svc.IntakeOutcomeByMonth(r.Context(), orgID, months)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if asCSV {
			records := [][]string{{"month", "intakes", "adoptions"}}
			for _, row := range rows {
				records = append(records, []string{row.Month, strconv.Itoa(row.Intakes), strconv.Itoa(row.Adoptions)})
			}
			writeCSV(w, "intake-outcome.csv", records)
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func volunteerHoursHandler(svc *Service, membersSvc *members.Service, caps capabilities.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, asCSV, status, msg := authorize(r, membersSvc, caps)
		if status != 0 {
			http.Error(w, msg, status)
			return
		}

		from, to, err := parseWindow(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rows, err := svc.VolunteerHours(r.Context(), orgID, from, to)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if asCSV {
			records := [][]string{{"member_id", "hours"}}
			for _, row := range rows {
				records = append(records, []string{row.MemberID, strconv.FormatFloat(row.Hours, 'f', -1, 64)})
			}
			writeCSV(w, "volunteer-hours.csv", records)
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func parseWindow(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, errors.New("from must be RFC3339")
		}
		from = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, errors.New("to must be RFC3339")
		}
		to = &t
	}
	return from, to, nil
}

func writeCSV(w http.ResponseWriter, filename string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.WriteAll(records)
	cw.Flush()
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
