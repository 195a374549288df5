package members

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shelter-ops/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/orgs/{orgID}/members", func(mr chi.Router) {
		// Invitar (solo admin)
		mr.Post("/", inviteMemberHandler(svc))
		// Listar miembros de la org (staff+)
		mr.Get("/", listMembersHandler(svc))
		// Revocar membresía (solo admin)
		mr.Post("/{memberID}/revoke", revokeMemberHandler(svc))
	})

	// Mis membresías (incluye invitaciones pendientes)
	r.Get("/me/memberships", listMyMembershipsHandler(svc))

	// Aceptar invitación (el invitado)
	r.Post("/memberships/{memberID}/accept", acceptMembershipHandler(svc))
}

type inviteMemberRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role" enums:"admin,staff,foster,volunteer"`
}

type memberResponse struct {
	ID        string     `json:"id"`
	OrgID     string     `json:"org_id"`
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// inviteMemberHandler godoc
// @Summary Invitar un miembro a la organización
// @Description Crea o actualiza la invitación de un usuario a la org. Solo admins. Re-invitar actualiza el rol.
// @Tags members
// @Accept json
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Param payload body inviteMemberRequest true "Usuario a invitar"
// @Success 201 {object} memberResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /orgs/{orgID}/members [post]
func inviteMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		// Solo un admin activo de la org puede invitar.
		caller, err := svc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || caller.Role != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req inviteMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Invite(r.Context(), InviteInput{
			OrgID:  orgID,
			UserID: req.UserID,
			Email:  req.Email,
			Role:   Role(req.Role),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toMemberResponse(m))
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := svc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !RoleAtLeast(caller.Role, RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByOrg(r.Context(), orgID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMemberResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func revokeMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		memberID := chi.URLParam(r, "memberID")

		caller, err := svc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || caller.Role != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// La membresía debe ser de esta org (no filtrar existencia cross-org).
		target, err := svc.GetByID(r.Context(), memberID)
		if err != nil || target.OrgID != orgID {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}

		m, err := svc.Revoke(r.Context(), memberID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "member not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMemberResponse(m))
	}
}

func listMyMembershipsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMemberResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func acceptMembershipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")

		m, err := svc.Accept(r.Context(), memberID, claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "membership not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrBadState:
				http.Error(w, "membership revoked", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMemberResponse(m))
	}
}

func toMemberResponse(m Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Email:     m.Email,
		Role:      m.Role,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		RevokedAt: m.RevokedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
