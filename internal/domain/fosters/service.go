package fosters

import (
	"context"
	"errors"
	"strings"
	"time"

	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/members"

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
	membersSvc *members.Service
	now        func() time.Time
}

func NewService(repo Repository, animalsSvc *animals.Service, membersSvc *members.Service) *Service {
	return &Service{
		repo:       repo,
		animalsSvc: animalsSvc,
		membersSvc: membersSvc,
		now:        time.Now,
	}
}

type StartInput struct {
	OrgID    string
	AnimalID string
	MemberID string
	Notes    string
}

// Start abre un placement y mueve el animal a fostered.
// Reglas: animal de la org en available/hold, miembro activo con rol >= foster,
// y sin otro placement activo para el animal.
func (s *Service) Start(ctx context.Context, in StartInput) (Placement, error) {
	orgID := strings.TrimSpace(in.OrgID)
	animalID := strings.TrimSpace(in.AnimalID)
	memberID := strings.TrimSpace(in.MemberID)

	if orgID == "" || animalID == "" || memberID == "" {
		return Placement{}, ErrInvalidInput
	}

	a, err := s.animalsSvc.GetByID(ctx, animalID)
	if err != nil || a.OrgID != orgID {
		return Placement{}, ErrNotFound
	}
	if a.Status != animals.StatusAvailable && a.Status != animals.StatusHold {
		return Placement{}, ErrBadState
	}

	m, err := s.membersSvc.GetByID(ctx, memberID)
	if err != nil || m.OrgID != orgID {
		return Placement{}, ErrNotFound
	}
	if m.Status != members.StatusActive || !members.RoleAtLeast(m.Role, members.RoleFoster) {
		return Placement{}, ErrBadState
	}

	if existing, err := s.repo.GetActiveByAnimal(ctx, animalID); err == nil && existing.ID != "" {
		return Placement{}, ErrBadState
	}

	now := s.now()
	p := Placement{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		AnimalID:  animalID,
		MemberID:  memberID,
		Status:    StatusActive,
		StartedAt: now,
		Notes:     strings.TrimSpace(in.Notes),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Placement{}, err
	}

	if _, err := s.animalsSvc.SetStatus(ctx, animalID, animals.StatusFostered); err != nil {
		return Placement{}, err
	}

	return p, nil
}

// End cierra el placement (idempotente) y devuelve el animal a available,
// salvo que el animal ya haya salido del refugio (adopted/archived).
func (s *Service) End(ctx context.Context, placementID string) (Placement, error) {
	placementID = strings.TrimSpace(placementID)
	if placementID == "" {
		return Placement{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, placementID)
	if err != nil {
		return Placement{}, ErrNotFound
	}

	if p.Status == StatusEnded {
		return p, nil
	}

	now := s.now()
	p.Status = StatusEnded
	p.EndedAt = &now

	if err := s.repo.Update(ctx, p); err != nil {
		return Placement{}, err
	}

	if a, err := s.animalsSvc.GetByID(ctx, p.AnimalID); err == nil && a.Status == animals.StatusFostered {
		_, _ = s.animalsSvc.SetStatus(ctx, p.AnimalID, animals.StatusAvailable)
	}

	return p, nil
}

func (s *Service) GetByID(ctx context.Context, placementID string) (Placement, error) {
	placementID = strings.TrimSpace(placementID)
	if placementID == "" {
		return Placement{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, placementID)
	if err != nil {
		return Placement{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Placement, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByAnimal(ctx, animalID)
}

func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Placement, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMember(ctx, memberID)
}

// ActivePlacement expone el placement activo de un animal (si existe).
// Lo usa medical para la vista role-scoped de fosters.
func (s *Service) ActivePlacement(ctx context.Context, animalID string) (Placement, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return Placement{}, ErrInvalidInput
	}
	p, err := s.repo.GetActiveByAnimal(ctx, animalID)
	if err != nil {
		return Placement{}, ErrNotFound
	}
	return p, nil
}

// EndActiveForAnimal cierra el placement activo del animal si lo hay.
// Lo usa adoptions al completar una adopción.
func (s *Service) EndActiveForAnimal(ctx context.Context, animalID string) error {
	p, err := s.repo.GetActiveByAnimal(ctx, animalID)
	if err != nil || p.ID == "" {
		return nil
	}
	_, err = s.End(ctx, p.ID)
	return err
}
