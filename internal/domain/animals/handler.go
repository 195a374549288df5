package animals

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service) {
	r.Route("/orgs/{orgID}/animals", func(ar chi.Router) {
		// Intake (staff+)
		ar.Post("/", intakeAnimalHandler(svc, membersSvc))
		// Listado con filtros (cualquier miembro activo)
		ar.Get("/", listAnimalsHandler(svc, membersSvc))

		ar.Get("/{animalID}", getAnimalHandler(svc, membersSvc))
		// PATCH de perfil (staff+)
		ar.Patch("/{animalID}", updateAnimalHandler(svc, membersSvc))
		// Archivar (staff+, idempotente)
		ar.Post("/{animalID}/archive", archiveAnimalHandler(svc, membersSvc))
	})
}

type intakeAnimalRequest struct {
	Name       string `json:"name"`
	Species    string `json:"species" enums:"dog,cat,other"`
	Breed      string `json:"breed"`
	Sex        string `json:"sex" enums:"male,female,unknown"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD opcional
	Microchip  string `json:"microchip"`
	IntakeAt   string `json:"intake_at"` // RFC3339 opcional, default: ahora
	IntakeKind string `json:"intake_kind" enums:"stray,surrender,transfer,born_in_care"`
	Notes      string `json:"notes"`
}

type animalResponse struct {
	ID         string       `json:"id"`
	OrgID      string       `json:"org_id"`
	Name       string       `json:"name"`
	Species    Species      `json:"species"`
	Breed      string       `json:"breed"`
	Sex        Sex          `json:"sex"`
	BirthDate  *time.Time   `json:"birth_date,omitempty"`
	Microchip  string       `json:"microchip"`
	IntakeAt   time.Time    `json:"intake_at"`
	IntakeKind IntakeKind   `json:"intake_kind"`
	Status     AnimalStatus `json:"status"`
	Notes      string       `json:"notes"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string `json:"name"`
	Species   *string `json:"species"`
	Breed     *string `json:"breed"`
	Sex       *string `json:"sex"`
	BirthDate *string `json:"birth_date"` // YYYY-MM-DD. Para limpiar: enviar null
	Microchip *string `json:"microchip"`
	Notes     *string `json:"notes"`
}

// intakeAnimalHandler godoc
// @Summary Registrar ingreso de un animal
// @Description Registra el intake de un animal en la organización. Requiere rol staff o superior. En tier free hay un cap de animales activos.
// @Tags animals
// @Accept json
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Param payload body intakeAnimalRequest true "Datos del animal; birth_date en YYYY-MM-DD, intake_at en RFC3339"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 402 {string} string "animal limit reached for free tier"
// @Failure 403 {string} string "forbidden"
// @Router /orgs/{orgID}/animals [post]
func intakeAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		var req intakeAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		var intakeAt *time.Time
		if strings.TrimSpace(req.IntakeAt) != "" {
			t, err := time.Parse(time.RFC3339, req.IntakeAt)
			if err != nil {
				http.Error(w, "intake_at must be RFC3339", http.StatusBadRequest)
				return
			}
			intakeAt = &t
		}

		a, err := svc.Intake(r.Context(), orgID, IntakeInput{
			Name:       req.Name,
			Species:    req.Species,
			Breed:      req.Breed,
			Sex:        req.Sex,
			BirthDate:  bd,
			Microchip:  req.Microchip,
			IntakeAt:   intakeAt,
			IntakeKind: req.IntakeKind,
			Notes:      req.Notes,
		})
		if err != nil {
			if err == ErrTierLimit {
				http.Error(w, err.Error(), http.StatusPaymentRequired)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func listAnimalsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		if _, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByOrg(r.Context(), orgID, parseListFilter(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		animalID := chi.URLParam(r, "animalID")

		if _, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := svc.GetByID(r.Context(), animalID)
		if err != nil || a.OrgID != orgID {
			// Cross-org => mismo 404 que inexistente
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		current, err := svc.GetByID(r.Context(), animalID)
		if err != nil || current.OrgID != orgID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		// Para soportar birth_date: null, necesitamos detectar presencia del campo.
		// Estrategia: decodificar a map primero para ver si "birth_date" estuvo presente.
		var raw map[string]json.RawMessage
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateAnimalRequest
		{
			// Re-marshal y decode al struct para reutilizar tags
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := PatchDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.UpdateProfile(r.Context(), animalID, UpdateProfileInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			BirthDate: bd,
			Microchip: req.Microchip,
			Notes:     req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "animal not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func archiveAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		current, err := svc.GetByID(r.Context(), animalID)
		if err != nil || current.OrgID != orgID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		a, err := svc.Archive(r.Context(), animalID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func parseListFilter(r *http.Request) ListFilter {
	filter := ListFilter{Limit: 50}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}

	// species=dog,cat
	if v := strings.TrimSpace(r.URL.Query().Get("species")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if sp := Species(strings.TrimSpace(p)); sp != "" {
				filter.Species = append(filter.Species, sp)
			}
		}
	}

	// status=available,fostered
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if st := AnimalStatus(strings.TrimSpace(p)); st != "" {
				filter.Statuses = append(filter.Statuses, st)
			}
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:         a.ID,
		OrgID:      a.OrgID,
		Name:       a.Name,
		Species:    a.Species,
		Breed:      a.Breed,
		Sex:        a.Sex,
		BirthDate:  a.BirthDate,
		Microchip:  a.Microchip,
		IntakeAt:   a.IntakeAt,
		IntakeKind: a.IntakeKind,
		Status:     a.Status,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
