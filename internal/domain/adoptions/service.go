package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/fosters"
	"shelter-ops/internal/ports/payments"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo       Repository
	animalsSvc *animals.Service
	fostersSvc *fosters.Service
	checkout   payments.CheckoutCreator // nil si no hay proveedor configurado
	now        func() time.Time
}

func NewService(repo Repository, animalsSvc *animals.Service, fostersSvc *fosters.Service, checkout payments.CheckoutCreator) *Service {
	return &Service{
		repo:       repo,
		animalsSvc: animalsSvc,
		fostersSvc: fostersSvc,
		checkout:   checkout,
		now:        time.Now,
	}
}

type SubmitInput struct {
	AnimalID       string
	ApplicantName  string
	ApplicantEmail string
	HomeNotes      string
	FeeCents       int64
}

// Submit registra una solicitud de adopción. El animal debe estar
// available o fostered (un animal en foster puede ser adoptado).
func (s *Service) Submit(ctx context.Context, orgID string, in SubmitInput) (Application, error) {
	orgID = strings.TrimSpace(orgID)
	animalID := strings.TrimSpace(in.AnimalID)
	name := strings.TrimSpace(in.ApplicantName)
	email := strings.ToLower(strings.TrimSpace(in.ApplicantEmail))

	if orgID == "" || animalID == "" || name == "" || email == "" {
		return Application{}, ErrInvalidInput
	}
	if in.FeeCents < 0 {
		return Application{}, ErrInvalidInput
	}

	a, err := s.animalsSvc.GetByID(ctx, animalID)
	if err != nil || a.OrgID != orgID {
		return Application{}, ErrNotFound
	}
	if a.Status != animals.StatusAvailable && a.Status != animals.StatusFostered {
		return Application{}, fmt.Errorf("%w: animal is %s", ErrBadState, a.Status)
	}

	now := s.now()
	app := Application{
		ID:             uuid.NewString(),
		OrgID:          orgID,
		AnimalID:       animalID,
		ApplicantName:  name,
		ApplicantEmail: email,
		HomeNotes:      strings.TrimSpace(in.HomeNotes),
		FeeCents:       in.FeeCents,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Approve aprueba una solicitud pending y pone el animal en hold.
func (s *Service) Approve(ctx context.Context, id, deciderMemberID string) (Application, error) {
	return s.decide(ctx, id, deciderMemberID, StatusApproved)
}

// Deny rechaza una solicitud pending. El hold del animal se libera solo
// si ninguna otra solicitud aprobada lo reclama.
func (s *Service) Deny(ctx context.Context, id, deciderMemberID string) (Application, error) {
	return s.decide(ctx, id, deciderMemberID, StatusDenied)
}

func (s *Service) decide(ctx context.Context, id, deciderMemberID string, verdict Status) (Application, error) {
	id = strings.TrimSpace(id)
	deciderMemberID = strings.TrimSpace(deciderMemberID)
	if id == "" || deciderMemberID == "" {
		return Application{}, ErrInvalidInput
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	if app.Status != StatusPending {
		return Application{}, fmt.Errorf("%w: application is %s", ErrBadState, app.Status)
	}

	now := s.now()
	app.Status = verdict
	app.DecidedBy = deciderMemberID
	app.DecidedAt = &now
	app.UpdatedAt = now

	if err := s.repo.Update(ctx, app); err != nil {
		return Application{}, err
	}

	switch verdict {
	case StatusApproved:
		// El hold evita que el animal se adopte dos veces
		if _, err := s.animalsSvc.SetStatus(ctx, app.AnimalID, animals.StatusHold); err != nil {
			return Application{}, err
		}
	case StatusDenied:
		if err := s.releaseHoldIfUnclaimed(ctx, app.AnimalID); err != nil {
			return Application{}, err
		}
	}

	return app, nil
}

// releaseHoldIfUnclaimed devuelve el animal a available cuando está en
// hold y ninguna solicitud aprobada sigue pendiente de completarse.
func (s *Service) releaseHoldIfUnclaimed(ctx context.Context, animalID string) error {
	a, err := s.animalsSvc.GetByID(ctx, animalID)
	if err != nil {
		return err
	}
	if a.Status != animals.StatusHold {
		return nil
	}

	apps, err := s.repo.ListByAnimal(ctx, animalID)
	if err != nil {
		return err
	}
	for _, other := range apps {
		if other.Status == StatusApproved {
			return nil
		}
	}

	_, err = s.animalsSvc.SetStatus(ctx, animalID, animals.StatusAvailable)
	return err
}

type CompleteInput struct {
	// WithCheckout pide crear una sesión de pago por FeeCents.
	WithCheckout bool
	SuccessURL   string
	CancelURL    string
}

// Complete finaliza una adopción aprobada: marca el animal adopted,
// termina cualquier foster activo y, opcionalmente, crea el checkout.
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrInvalidInput
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	if app.Status != StatusApproved {
		return Application{}, fmt.Errorf("%w: application is %s", ErrBadState, app.Status)
	}

	if in.WithCheckout && app.FeeCents > 0 {
		if s.checkout == nil {
			return Application{}, fmt.Errorf("%w: no payment provider configured", ErrBadState)
		}
		session, err := s.checkout.CreateCheckoutSession(ctx, payments.CheckoutInput{
			OrgID:         app.OrgID,
			Reference:     app.ID,
			AmountCents:   app.FeeCents,
			Currency:      "usd",
			CustomerEmail: app.ApplicantEmail,
			Description:   "Adoption fee",
			SuccessURL:    in.SuccessURL,
			CancelURL:     in.CancelURL,
		})
		if err != nil {
			return Application{}, err
		}
		app.CheckoutRef = session.ID
	}

	if err := s.fostersSvc.EndActiveForAnimal(ctx, app.AnimalID); err != nil {
		return Application{}, err
	}
	if _, err := s.animalsSvc.SetStatus(ctx, app.AnimalID, animals.StatusAdopted); err != nil {
		return Application{}, err
	}

	now := s.now()
	app.Status = StatusCompleted
	app.CompletedAt = &now
	app.UpdatedAt = now

	if err := s.repo.Update(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrInvalidInput
	}
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (s *Service) ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Application, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOrg(ctx, orgID, filter)
}
