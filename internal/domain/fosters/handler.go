package fosters

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
	r.Route("/orgs/{orgID}/fosters", func(fr chi.Router) {
		// Abrir placement (staff+)
		fr.Post("/", startPlacementHandler(svc, membersSvc))
		// Listar placements de la org, opcionalmente por member_id
		fr.Get("/", listPlacementsHandler(svc, membersSvc))
		// Cerrar placement (staff+ o el propio foster)
		fr.Post("/{placementID}/end", endPlacementHandler(svc, membersSvc))
	})

	// Historial de placements de un animal (staff+)
	r.Get("/orgs/{orgID}/animals/{animalID}/fosters", listAnimalPlacementsHandler(svc, membersSvc))
}

type startPlacementRequest struct {
	AnimalID string `json:"animal_id"`
	MemberID string `json:"member_id"`
	Notes    string `json:"notes"`
}

type placementResponse struct {
	ID        string     `json:"id"`
	OrgID     string     `json:"org_id"`
	AnimalID  string     `json:"animal_id"`
	MemberID  string     `json:"member_id"`
	Status    Status     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Notes     string     `json:"notes"`
}

func startPlacementHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		var req startPlacementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Start(r.Context(), StartInput{
			OrgID:    orgID,
			AnimalID: req.AnimalID,
			MemberID: req.MemberID,
			Notes:    req.Notes,
		})
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "animal or member not found", http.StatusNotFound)
			case ErrBadState:
				http.Error(w, "animal or member not eligible", http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPlacementResponse(p))
	}
}

func endPlacementHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		placementID := chi.URLParam(r, "placementID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		p, err := svc.GetByID(r.Context(), placementID)
		if err != nil || p.OrgID != orgID {
			http.Error(w, "placement not found", http.StatusNotFound)
			return
		}

		// staff+ o el foster del placement
		if !members.RoleAtLeast(caller.Role, members.RoleStaff) && p.MemberID != caller.ID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ended, err := svc.End(r.Context(), placementID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPlacementResponse(ended))
	}
}

func listPlacementsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		memberID := strings.TrimSpace(r.URL.Query().Get("member_id"))
		if memberID == "" {
			memberID = caller.ID
		}

		// Ver placements ajenos requiere staff+
		if memberID != caller.ID && !members.RoleAtLeast(caller.Role, members.RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByMember(r.Context(), memberID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]placementResponse, 0, len(items))
		for _, p := range items {
			if p.OrgID != orgID {
				continue
			}
			out = append(out, toPlacementResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func listAnimalPlacementsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		animalID := chi.URLParam(r, "animalID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByAnimal(r.Context(), animalID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]placementResponse, 0, len(items))
		for _, p := range items {
			if p.OrgID != orgID {
				continue
			}
			out = append(out, toPlacementResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toPlacementResponse(p Placement) placementResponse {
	return placementResponse{
		ID:        p.ID,
		OrgID:     p.OrgID,
		AnimalID:  p.AnimalID,
		MemberID:  p.MemberID,
		Status:    p.Status,
		StartedAt: p.StartedAt,
		EndedAt:   p.EndedAt,
		Notes:     p.Notes,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
