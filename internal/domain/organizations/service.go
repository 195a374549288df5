package organizations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name         string
	City         string
	ContactEmail string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Organization, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Organization{}, ErrInvalidInput
	}

	now := s.now()
	o := Organization{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		City:         strings.TrimSpace(in.City),
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		Tier:         TierFree,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Organization{}, ErrInvalidInput
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Organization{}, ErrNotFound
	}
	return o, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string
	City         *string
	ContactEmail *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Organization, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return Organization{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Organization{}, ErrInvalidInput
		}
		o.Name = name
	}
	if in.City != nil {
		o.City = strings.TrimSpace(*in.City)
	}
	if in.ContactEmail != nil {
		o.ContactEmail = strings.TrimSpace(*in.ContactEmail)
	}

	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

// SetTier lo usa billing cuando cambia la suscripción. No expone endpoint propio.
func (s *Service) SetTier(ctx context.Context, id string, tier Tier) (Organization, error) {
	if tier != TierFree && tier != TierPremium {
		return Organization{}, ErrInvalidInput
	}

	o, err := s.GetByID(ctx, id)
	if err != nil {
		return Organization{}, err
	}

	if o.Tier == tier {
		return o, nil
	}

	o.Tier = tier
	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}
