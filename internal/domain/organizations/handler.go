package organizations

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service) {
	r.Post("/orgs", createOrgHandler(svc, membersSvc))
	r.Get("/orgs/{orgID}", getOrgHandler(svc, membersSvc))
	r.Patch("/orgs/{orgID}", updateOrgHandler(svc, membersSvc))
}

type createOrgRequest struct {
	Name         string `json:"name"`
	City         string `json:"city"`
	ContactEmail string `json:"contact_email"`
}

type orgResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	City         string    `json:"city"`
	ContactEmail string    `json:"contact_email"`
	Tier         Tier      `json:"tier"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type updateOrgRequest struct {
	Name         *string `json:"name"`
	City         *string `json:"city"`
	ContactEmail *string `json:"contact_email"`
}

// createOrgHandler godoc
// @Summary Crear organización
// @Description Crea una organización (shelter) nueva. El usuario autenticado queda como admin activo. Tier inicial: free.
// @Tags organizations
// @Accept json
// @Produce json
// @Param payload body createOrgRequest true "Datos de la organización"
// @Success 201 {object} orgResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /orgs [post]
func createOrgHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createOrgRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.Create(r.Context(), CreateInput{
			Name:         req.Name,
			City:         req.City,
			ContactEmail: req.ContactEmail,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// El creador queda como admin activo de su org.
		if _, err := membersSvc.CreateAdmin(r.Context(), o.ID, claims.UserID, claims.Email); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toOrgResponse(o))
	}
}

func getOrgHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		// Cualquier miembro activo puede ver su org. Para el resto es un 404
		// (no confirmamos existencia de orgs ajenas).
		if _, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID); err != nil {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}

		o, err := svc.GetByID(r.Context(), orgID)
		if err != nil {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toOrgResponse(o))
	}
}

func updateOrgHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		if caller.Role != members.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateOrgRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.Update(r.Context(), orgID, UpdateInput{
			Name:         req.Name,
			City:         req.City,
			ContactEmail: req.ContactEmail,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "organization not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toOrgResponse(o))
	}
}

func toOrgResponse(o Organization) orgResponse {
	return orgResponse{
		ID:           o.ID,
		Name:         o.Name,
		City:         o.City,
		ContactEmail: o.ContactEmail,
		Tier:         o.Tier,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
