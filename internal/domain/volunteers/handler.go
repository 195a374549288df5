package volunteers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service) {
	r.Route("/orgs/{orgID}/activities", func(rr chi.Router) {
		rr.Post("/", logActivityHandler(svc, membersSvc))
		rr.Get("/", listActivitiesHandler(svc, membersSvc))
		rr.Get("/hours", hoursTotalHandler(svc, membersSvc))
	})
}

// logActivityRequest es el cuerpo para registrar horas voluntarias.
type logActivityRequest struct {
	MemberID   string  `json:"member_id"` // opcional; staff+ puede registrar por otros
	Kind       Kind    `json:"kind" enums:"walking,cleaning,transport,event,admin,other"`
	Hours      float64 `json:"hours"`
	OccurredAt string  `json:"occurred_at"` // RFC3339, opcional
	Notes      string  `json:"notes"`
}

type activityResponse struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	MemberID   string    `json:"member_id"`
	Kind       Kind      `json:"kind"`
	Hours      float64   `json:"hours"`
	OccurredAt time.Time `json:"occurred_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type hoursTotalResponse struct {
	MemberID string  `json:"member_id"`
	Hours    float64 `json:"hours"`
}

// logActivityHandler godoc
// @Summary Registrar horas voluntarias
// @Description Todo miembro activo registra sus propias horas; staff o superior puede registrar por otro miembro vía member_id.
// @Tags volunteers
// @Accept json
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Param payload body logActivityRequest true "Actividad; occurred_at en RFC3339 (opcional)"
// @Success 201 {object} activityResponse
// @Failure 400 {string} string "invalid json / horas fuera de rango"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /orgs/{orgID}/activities [post]
func logActivityHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req logActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		memberID := caller.ID
		if req.MemberID != "" && req.MemberID != caller.ID {
			// Registrar por otro exige staff+ y que el destino sea miembro de la org
			if !members.RoleAtLeast(caller.Role, members.RoleStaff) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			target, err := membersSvc.GetByID(r.Context(), req.MemberID)
			if err != nil || target.OrgID != orgID {
				http.Error(w, "member not found", http.StatusNotFound)
				return
			}
			memberID = target.ID
		}

		var occurred time.Time
		if req.OccurredAt != "" {
			occurred, err = time.Parse(time.RFC3339, req.OccurredAt)
			if err != nil {
				http.Error(w, "occurred_at must be RFC3339", http.StatusBadRequest)
				return
			}
		}

		a, err := svc.Log(r.Context(), orgID, memberID, LogInput{
			Kind:       req.Kind,
			Hours:      req.Hours,
			OccurredAt: occurred,
			Notes:      req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toActivityResponse(a))
	}
}

func listActivitiesHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		filter, err := parseActivityFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		memberID := strings.TrimSpace(r.URL.Query().Get("member_id"))

		var items []Activity
		switch {
		case members.RoleAtLeast(caller.Role, members.RoleStaff):
			if memberID != "" {
				items, err = svc.ListByMember(r.Context(), memberID, filter)
			} else {
				items, err = svc.ListByOrg(r.Context(), orgID, filter)
			}
		default:
			// Cada quien ve solo lo suyo
			if memberID != "" && memberID != caller.ID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			items, err = svc.ListByMember(r.Context(), caller.ID, filter)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]activityResponse, 0, len(items))
		for _, a := range items {
			if a.OrgID != orgID {
				continue
			}
			out = append(out, toActivityResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func hoursTotalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		from, to, err := parseWindow(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		totals, err := svc.HoursTotal(r.Context(), orgID, from, to)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]hoursTotalResponse, 0, len(totals))
		for id, h := range totals {
			out = append(out, hoursTotalResponse{MemberID: id, Hours: h})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func parseActivityFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	if v := strings.TrimSpace(r.URL.Query().Get("kind")); v != "" {
		filter.Kind = Kind(v)
	}

	from, to, err := parseWindow(r)
	if err != nil {
		return ListFilter{}, err
	}
	filter.From = from
	filter.To = to

	return filter, nil
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

func toActivityResponse(a Activity) activityResponse {
	return activityResponse{
		ID:         a.ID,
		OrgID:      a.OrgID,
		MemberID:   a.MemberID,
		Kind:       a.Kind,
		Hours:      a.Hours,
		OccurredAt: a.OccurredAt,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
