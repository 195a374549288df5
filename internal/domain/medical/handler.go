package medical

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/fosters"
	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, animalsSvc *animals.Service, membersSvc *members.Service, fostersSvc *fosters.Service) {
	r.Route("/orgs/{orgID}/animals/{animalID}/records", func(rr chi.Router) {
		rr.Post("/", createRecordHandler(svc, animalsSvc, membersSvc, fostersSvc))
		rr.Get("/", listRecordsHandler(svc, animalsSvc, membersSvc, fostersSvc))
		// Anular (void) registro: staff+
		rr.Post("/{recordID}/void", voidRecordHandler(svc, animalsSvc, membersSvc))
	})

	r.Route("/orgs/{orgID}/animals/{animalID}/tasks", func(tr chi.Router) {
		tr.Post("/", scheduleTaskHandler(svc, animalsSvc, membersSvc))
	})

	// Agenda de la org (staff+): filtros status/due_before
	r.Get("/orgs/{orgID}/tasks", listTasksHandler(svc, membersSvc))
	r.Post("/orgs/{orgID}/tasks/{taskID}/complete", completeTaskHandler(svc, membersSvc, fostersSvc))
}

// createRecordRequest es el cuerpo para registrar una entrada clínica.
type createRecordRequest struct {
	Type       RecordType `json:"type" enums:"VACCINE,DEWORMING,FLEA_TREATMENT,EXAM,SURGERY,MEDICATION,WEIGHT,NOTE"`
	OccurredAt string     `json:"occurred_at"` // RFC3339
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	Product    string     `json:"product"`
	Dose       string     `json:"dose"`
}

type recordResponse struct {
	ID            string       `json:"id"`
	OrgID         string       `json:"org_id"`
	AnimalID      string       `json:"animal_id"`
	Type          RecordType   `json:"type"`
	OccurredAt    time.Time    `json:"occurred_at"`
	RecordedAt    time.Time    `json:"recorded_at"`
	Title         string       `json:"title"`
	Notes         string       `json:"notes"`
	Product       string       `json:"product,omitempty"`
	Dose          string       `json:"dose,omitempty"`
	ActorMemberID string       `json:"actor_member_id"`
	Status        RecordStatus `json:"status"`
}

type scheduleTaskRequest struct {
	Type  RecordType `json:"type"`
	Title string     `json:"title"`
	DueOn string     `json:"due_on"` // YYYY-MM-DD
}

type completeTaskRequest struct {
	RecordID string `json:"record_id"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"org_id"`
	AnimalID    string     `json:"animal_id"`
	Type        RecordType `json:"type"`
	Title       string     `json:"title"`
	DueOn       string     `json:"due_on"` // YYYY-MM-DD
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RecordID    string     `json:"record_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// canAccessAnimalMedical decide la vista role-scoped:
// - staff+ siempre
// - foster solo si el animal está actualmente colocado con él
// - volunteer no accede al historial clínico
func canAccessAnimalMedical(ctx context.Context, caller members.Member, animalID string, fostersSvc *fosters.Service) bool {
	if members.RoleAtLeast(caller.Role, members.RoleStaff) {
		return true
	}
	if caller.Role != members.RoleFoster {
		return false
	}
	p, err := fostersSvc.ActivePlacement(ctx, animalID)
	return err == nil && p.MemberID == caller.ID
}

// createRecordHandler godoc
// @Summary Registrar entrada clínica
// @Description Crea un registro en el historial clínico del animal. Staff o superior siempre puede; un foster solo para animales actualmente colocados con él.
// @Tags medical
// @Accept json
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Param animalID path string true "ID del animal"
// @Param payload body createRecordRequest true "Datos del registro; occurred_at en RFC3339"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / occurred_at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /orgs/{orgID}/animals/{animalID}/records [post]
func createRecordHandler(svc *Service, animalsSvc *animals.Service, membersSvc *members.Service, fostersSvc *fosters.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		animalID := chi.URLParam(r, "animalID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := animalsSvc.GetByID(r.Context(), animalID)
		if err != nil || a.OrgID != orgID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		if !canAccessAnimalMedical(r.Context(), caller, animalID, fostersSvc) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			http.Error(w, "occurred_at must be RFC3339", http.StatusBadRequest)
			return
		}

		rec, err := svc.CreateRecord(r.Context(), orgID, animalID, caller.ID, CreateRecordInput{
			Type:       req.Type,
			OccurredAt: t,
			Title:      req.Title,
			Notes:      req.Notes,
			Product:    req.Product,
			Dose:       req.Dose,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func listRecordsHandler(svc *Service, animalsSvc *animals.Service, membersSvc *members.Service, fostersSvc *fosters.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		animalID := chi.URLParam(r, "animalID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := animalsSvc.GetByID(r.Context(), animalID)
		if err != nil || a.OrgID != orgID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		if !canAccessAnimalMedical(r.Context(), caller, animalID, fostersSvc) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListRecords(r.Context(), animalID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func voidRecordHandler(svc *Service, animalsSvc *animals.Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		animalID := chi.URLParam(r, "animalID")
		recordID := chi.URLParam(r, "recordID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleStaff) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := animalsSvc.GetByID(r.Context(), animalID)
		if err != nil || a.OrgID != orgID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		// El registro debe existir y pertenecer al animal
		rec, err := svc.GetRecordByID(r.Context(), recordID)
		if err != nil || rec.AnimalID != animalID {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}

		updated, err := svc.VoidRecord(r.Context(), recordID)
		if err != nil {
			if err == ErrNotFound {
				http.Error(w, "record not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(updated))
	}
}

func scheduleTaskHandler(svc *Service, animalsSvc *animals.Service, membersSvc *members.Service) http.HandlerFunc {
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

		a, err := animalsSvc.GetByID(r.Context(), animalID)
		if err != nil || a.OrgID != orgID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		var req scheduleTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		due, err := time.Parse("2006-01-02", req.DueOn)
		if err != nil {
			http.Error(w, "due_on must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		t, err := svc.ScheduleTask(r.Context(), orgID, animalID, ScheduleTaskInput{
			Type:  req.Type,
			Title: req.Title,
			DueOn: due,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toTaskResponse(t))
	}
}

func listTasksHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		filter, err := parseTaskFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListTasks(r.Context(), orgID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]taskResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTaskResponse(t))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func completeTaskHandler(svc *Service, membersSvc *members.Service, fostersSvc *fosters.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")
		taskID := chi.URLParam(r, "taskID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		t, err := svc.GetTaskByID(r.Context(), taskID)
		if err != nil || t.OrgID != orgID {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}

		if !canAccessAnimalMedical(r.Context(), caller, t.AnimalID, fostersSvc) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Body opcional: {"record_id": "..."}
		var req completeTaskRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		done, err := svc.CompleteTask(r.Context(), taskID, req.RecordID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toTaskResponse(done))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=VACCINE,EXAM
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if t := RecordType(strings.TrimSpace(p)); t != "" {
				filter.Types = append(filter.Types, t)
			}
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter, nil
}

func parseTaskFilter(r *http.Request) (TaskFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := TaskFilter{Limit: limit}

	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if st := TaskStatus(strings.TrimSpace(p)); st != "" {
				filter.Statuses = append(filter.Statuses, st)
			}
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("animal_id")); v != "" {
		filter.AnimalID = v
	}

	if v := strings.TrimSpace(r.URL.Query().Get("due_before")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return TaskFilter{}, errors.New("due_before must be YYYY-MM-DD")
		}
		filter.DueBefore = &t
	}

	return filter, nil
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		OrgID:         rec.OrgID,
		AnimalID:      rec.AnimalID,
		Type:          rec.Type,
		OccurredAt:    rec.OccurredAt,
		RecordedAt:    rec.RecordedAt,
		Title:         rec.Title,
		Notes:         rec.Notes,
		Product:       rec.Product,
		Dose:          rec.Dose,
		ActorMemberID: rec.ActorMemberID,
		Status:        rec.Status,
	}
}

func toTaskResponse(t Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		OrgID:       t.OrgID,
		AnimalID:    t.AnimalID,
		Type:        t.Type,
		Title:       t.Title,
		DueOn:       t.DueOn.Format("2006-01-02"),
		Status:      t.Status,
		CompletedAt: t.CompletedAt,
		RecordID:    t.RecordID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
