package billing

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// SignatureVerifier valida la firma del webhook sobre el cuerpo crudo.
// La implementación concreta vive en el adapter del proveedor de pagos.
type SignatureVerifier func(payload []byte, sigHeader string) error

const maxWebhookBody = 1 << 20 // 1 MB

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service, verify SignatureVerifier) {
	// El webhook no pasa por auth: lo protege la firma
	r.Post("/billing/webhook", webhookHandler(svc, verify))

	r.Get("/orgs/{orgID}/billing/subscription", getSubscriptionHandler(svc, membersSvc))
	r.Get("/orgs/{orgID}/billing/events", listEventsHandler(svc, membersSvc))
}

type subscriptionResponse struct {
	ID                 string     `json:"id"`
	OrgID              string     `json:"org_id"`
	Tier               string     `json:"tier"`
	Status             SubStatus  `json:"status"`
	ExternalCustomerID string     `json:"external_customer_id,omitempty"`
	ExternalSubID      string     `json:"external_sub_id,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type eventResponse struct {
	ID              string    `json:"id"`
	OrgID           string    `json:"org_id"`
	ExternalEventID string    `json:"external_event_id"`
	Type            string    `json:"type"`
	ReceivedAt      time.Time `json:"received_at"`
}

// webhookHandler godoc
// @Summary Webhook de billing
// @Description Recibe eventos del proveedor de pagos. Verifica la firma Stripe-Signature, deduplica por id de evento y despacha según el tipo. Los replays devuelven 200 sin reprocesar.
// @Tags billing
// @Accept json
// @Produce plain
// @Param Stripe-Signature header string true "t=...,v1=..."
// @Success 200 {string} string "ok"
// @Failure 400 {string} string "payload inválido"
// @Failure 401 {string} string "firma inválida"
// @Router /billing/webhook [post]
func webhookHandler(svc *Service, verify SignatureVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "cannot read body", http.StatusBadRequest)
			return
		}

		if verify != nil {
			if err := verify(payload, r.Header.Get("Stripe-Signature")); err != nil {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}
		}

		if _, err := svc.ProcessWebhook(r.Context(), payload); err != nil {
			if err == ErrInvalidInput {
				http.Error(w, "invalid payload", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func getSubscriptionHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		sub, err := svc.Subscription(r.Context(), orgID)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, subscriptionResponse{
			ID:                 sub.ID,
			OrgID:              sub.OrgID,
			Tier:               sub.Tier,
			Status:             sub.Status,
			ExternalCustomerID: sub.ExternalCustomerID,
			ExternalSubID:      sub.ExternalSubID,
			CurrentPeriodEnd:   sub.CurrentPeriodEnd,
			CreatedAt:          sub.CreatedAt,
			UpdatedAt:          sub.UpdatedAt,
		})
	}
}

func listEventsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(r, "orgID")

		caller, err := membersSvc.ActiveMember(r.Context(), orgID, claims.UserID)
		if err != nil || !members.RoleAtLeast(caller.Role, members.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}

		events, err := svc.ListEvents(r.Context(), orgID, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(events))
		for _, ev := range events {
			out = append(out, eventResponse{
				ID:              ev.ID,
				OrgID:           ev.OrgID,
				ExternalEventID: ev.ExternalEventID,
				Type:            ev.Type,
				ReceivedAt:      ev.ReceivedAt,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
