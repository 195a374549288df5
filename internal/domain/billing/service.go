package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"shelter-ops/internal/domain/organizations"
	"shelter-ops/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrDuplicateEvent lo devuelve el repositorio cuando el
	// external_event_id ya fue registrado.
	ErrDuplicateEvent = errors.New("duplicate event")
)

type Service struct {
	repo    Repository
	orgsSvc *organizations.Service
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, orgsSvc *organizations.Service, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		orgsSvc: orgsSvc,
		log:     log,
		now:     time.Now,
	}
}

// Subscription devuelve la suscripción de la org, creando la default
// free/active si todavía no existe. Así la creación de orgs no depende
// de billing.
func (s *Service) Subscription(ctx context.Context, orgID string) (Subscription, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return Subscription{}, ErrInvalidInput
	}

	sub, err := s.repo.GetSubscriptionByOrg(ctx, orgID)
	if err == nil {
		return sub, nil
	}

	if _, err := s.orgsSvc.GetByID(ctx, orgID); err != nil {
		return Subscription{}, ErrNotFound
	}

	now := s.now()
	sub = Subscription{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Tier:      string(organizations.TierFree),
		Status:    SubStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		// Carrera con otra request: releer
		if existing, gerr := s.repo.GetSubscriptionByOrg(ctx, orgID); gerr == nil {
			return existing, nil
		}
		return Subscription{}, err
	}
	return sub, nil
}

func (s *Service) ListEvents(ctx context.Context, orgID string, limit int) ([]BillingEvent, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListEventsByOrg(ctx, orgID, limit)
}

// webhookEvent es el subconjunto del evento de Stripe que usamos.
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ClientReferenceID string `json:"client_reference_id"`
			Customer          string `json:"customer"`
			Subscription      string `json:"subscription"`
			ID                string `json:"id"`
			CurrentPeriodEnd  int64  `json:"current_period_end"`
			Metadata          struct {
				OrgID string `json:"org_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ProcessWebhook registra el evento (dedup por id externo) y despacha
// según el tipo. Un replay devuelve processed=false sin error: el
// endpoint responde 200 igual.
func (s *Service) ProcessWebhook(ctx context.Context, payload []byte) (processed bool, err error) {
	var ev webhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false, ErrInvalidInput
	}
	if strings.TrimSpace(ev.ID) == "" || strings.TrimSpace(ev.Type) == "" {
		return false, ErrInvalidInput
	}

	orgID := strings.TrimSpace(ev.Data.Object.ClientReferenceID)
	if orgID == "" {
		orgID = strings.TrimSpace(ev.Data.Object.Metadata.OrgID)
	}
	if orgID == "" {
		return false, ErrInvalidInput
	}

	record := BillingEvent{
		ID:              uuid.NewString(),
		OrgID:           orgID,
		ExternalEventID: ev.ID,
		Type:            ev.Type,
		Payload:         payload,
		ReceivedAt:      s.now(),
	}
	if err := s.repo.CreateEvent(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			s.log.Debug("billing: replayed event ignored", logger.Fields{"event_id": ev.ID})
			return false, nil
		}
		return false, err
	}

	sub, err := s.Subscription(ctx, orgID)
	if err != nil {
		return false, err
	}

	switch ev.Type {
	case "checkout.session.completed":
		sub.Tier = string(organizations.TierPremium)
		sub.Status = SubStatusActive
		if v := strings.TrimSpace(ev.Data.Object.Customer); v != "" {
			sub.ExternalCustomerID = v
		}
		if v := strings.TrimSpace(ev.Data.Object.Subscription); v != "" {
			sub.ExternalSubID = v
		}
		if ev.Data.Object.CurrentPeriodEnd > 0 {
			end := time.Unix(ev.Data.Object.CurrentPeriodEnd, 0).UTC()
			sub.CurrentPeriodEnd = &end
		}
		if err := s.saveSub(ctx, sub); err != nil {
			return false, err
		}
		if _, err := s.orgsSvc.SetTier(ctx, orgID, organizations.TierPremium); err != nil {
			return false, err
		}

	case "invoice.payment_failed":
		sub.Status = SubStatusPastDue
		if err := s.saveSub(ctx, sub); err != nil {
			return false, err
		}

	case "customer.subscription.deleted":
		sub.Tier = string(organizations.TierFree)
		sub.Status = SubStatusCanceled
		if err := s.saveSub(ctx, sub); err != nil {
			return false, err
		}
		if _, err := s.orgsSvc.SetTier(ctx, orgID, organizations.TierFree); err != nil {
			return false, err
		}

	default:
		// Tipos desconocidos quedan registrados y nada más
		s.log.Debug("billing: event type ignored", logger.Fields{"type": ev.Type})
	}

	return true, nil
}

func (s *Service) saveSub(ctx context.Context, sub Subscription) error {
	sub.UpdatedAt = s.now()
	return s.repo.UpdateSubscription(ctx, sub)
}
