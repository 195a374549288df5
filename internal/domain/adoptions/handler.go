package adoptions

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
	r.Route("/orgs/{orgID}/adoptions", func(rr chi.Router) {
		rr.Post("/", submitHandler(svc, membersSvc))
		rr.Get("/", listHandler(svc, membersSvc))
		rr.Get("/{applicationID}", getHandler(svc, membersSvc))
		rr.Post("/{applicationID}/approve", decideHandler(svc, membersSvc, StatusApproved))
		rr.Post("/{applicationID}/deny", decideHandler(svc, membersSvc, StatusDenied))
		rr.Post("/{applicationID}/complete", completeHandler(svc, membersSvc))
	})
}

// submitRequest es el cuerpo para registrar una solicitud de adopción.
type submitRequest struct {
	AnimalID       string `json:"animal_id"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
	HomeNotes      string `json:"home_notes"`
	FeeCents       int64  `json:"fee_cents"`
}

type completeRequest struct {
	WithCheckout bool   `json:"with_checkout"`
	SuccessURL   string `json:"success_url"`
	CancelURL    string `json:"cancel_url"`
}

type applicationResponse struct {
	ID             string     `json:"id"`
	OrgID          string     `json:"org_id"`
	AnimalID       string     `json:"animal_id"`
	ApplicantName  string     `json:"applicant_name"`
	ApplicantEmail string     `json:"applicant_email"`
	HomeNotes      string     `json:"home_notes,omitempty"`
	FeeCents       int64      `json:"fee_cents"`
	Status         Status     `json:"status"`
	DecidedBy      string     `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CheckoutRef    string     `json:"checkout_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// submitHandler godoc
// @Summary Registrar solicitud de adopción
// @Description Staff o superior registra una solicitud para un animal available o fostered.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Param payload body submitRequest true "Datos de la solicitud"
// @Success 201 {object} applicationResponse
// @Failure 400 {string} string "invalid json / datos incompletos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {string} string "estado del animal no permite adopción"
// @Router /orgs/{orgID}/adoptions [post]
func submitHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		app, err := svc.Submit(r.Context(), orgID, SubmitInput{
			AnimalID:       req.AnimalID,
			ApplicantName:  req.ApplicantName,
			ApplicantEmail: req.ApplicantEmail,
			HomeNotes:      req.HomeNotes,
			FeeCents:       req.FeeCents,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(app))
	}
}

func listHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		filter := ListFilter{Limit: 50}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				filter.Limit = n
			}
		}
		if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
			filter.Status = Status(v)
		}

		items, err := svc.ListByOrg(r.Context(), orgID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]applicationResponse, 0, len(items))
		for _, app := range items {
			out = append(out, toApplicationResponse(app))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		applicationID := chi.URLParam(r, "applicationID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		app, err := svc.GetByID(r.Context(), applicationID)
		if err != nil || app.OrgID != orgID {
			http.Error(w, "application not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(app))
	}
}

func decideHandler(svc *Service, membersSvc *members.Service, verdict Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		applicationID := chi.URLParam(r, "applicationID")

		// Aprobar o rechazar es decisión de admin
		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		app, err := svc.GetByID(r.Context(), applicationID)
		if err != nil || app.OrgID != orgID {
			http.Error(w, "application not found", http.StatusNotFound)
			return
		}

		var decided Application
		if verdict == StatusApproved {
			decided, err = svc.Approve(r.Context(), applicationID, caller.ID)
		} else {
			decided, err = svc.Deny(r.Context(), applicationID, caller.ID)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(decided))
	}
}

func completeHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		applicationID := chi.URLParam(r, "applicationID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		app, err := svc.GetByID(r.Context(), applicationID)
		if err != nil || app.OrgID != orgID {
			http.Error(w, "application not found", http.StatusNotFound)
			return
		}

		// Body opcional
		var req completeRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		done, err := svc.Complete(r.Context(), applicationID, CompleteInput{
			WithCheckout: req.WithCheckout,
			SuccessURL:   req.SuccessURL,
			CancelURL:    req.CancelURL,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(done))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toApplicationResponse(app Application) applicationResponse {
	return applicationResponse{
		ID:             app.ID,
		OrgID:          app.OrgID,
		AnimalID:       app.AnimalID,
		ApplicantName:  app.ApplicantName,
		ApplicantEmail: app.ApplicantEmail,
		HomeNotes:      app.HomeNotes,
		FeeCents:       app.FeeCents,
		Status:         app.Status,
		DecidedBy:      app.DecidedBy,
		DecidedAt:      app.DecidedAt,
		CompletedAt:    app.CompletedAt,
		CheckoutRef:    app.CheckoutRef,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
