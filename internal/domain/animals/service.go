package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"shelter-ops/internal/ports/capabilities"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
	ErrTierLimit    = errors.New("animal limit reached for free tier")
)

// freeTierAnimalCap: máximo de animales no-archivados/no-adoptados en tier free.
const freeTierAnimalCap = 25

type Service struct {
	repo Repository
	caps capabilities.Resolver
	now  func() time.Time
}

func NewService(repo Repository, caps capabilities.Resolver) *Service {
	return &Service{
		repo: repo,
		caps: caps,
		now:  time.Now,
	}
}

type IntakeInput struct {
	Name       string
	Species    string
	Breed      string
	Sex        string
	BirthDate  *time.Time
	Microchip  string
	IntakeAt   *time.Time
	IntakeKind string
	Notes      string
}

func (s *Service) Intake(ctx context.Context, orgID string, in IntakeInput) (Animal, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Animal{}, ErrInvalidInput
	}

	species, err := normalizeSpecies(in.Species)
	if err != nil {
		return Animal{}, err
	}
	sex, err := normalizeSex(in.Sex)
	if err != nil {
		return Animal{}, err
	}
	kind, err := normalizeIntakeKind(in.IntakeKind)
	if err != nil {
		return Animal{}, err
	}

	// Cap del tier free: animals:unlimited lo levanta.
	unlimited, err := s.caps.Has(ctx, orgID, "animals:unlimited")
	if err != nil {
		return Animal{}, err
	}
	if !unlimited {
		n, err := s.repo.CountActiveByOrg(ctx, orgID)
		if err != nil {
			return Animal{}, err
		}
		if n >= freeTierAnimalCap {
			return Animal{}, ErrTierLimit
		}
	}

	now := s.now()
	intakeAt := now
	if in.IntakeAt != nil && !in.IntakeAt.IsZero() {
		intakeAt = *in.IntakeAt
	}

	a := Animal{
		ID:         uuid.NewString(),
		OrgID:      orgID,
		Name:       strings.TrimSpace(in.Name),
		Species:    species,
		Breed:      strings.TrimSpace(in.Breed),
		Sex:        sex,
		BirthDate:  in.BirthDate,
		Microchip:  strings.TrimSpace(in.Microchip),
		IntakeAt:   intakeAt,
		IntakeKind: kind,
		Status:     StatusAvailable,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListByOrg(ctx context.Context, orgID string, filter ListFilter) ([]Animal, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOrg(ctx, orgID, filter)
}

// PatchDate permite diferenciar "birth_date": null (limpiar) de "no enviado".
type PatchDate struct {
	Present bool
	Value   *time.Time
}

type UpdateProfileInput struct {
	Name      *string
	Species   *string
	Breed     *string
	Sex       *string
	BirthDate PatchDate
	Microchip *string
	Notes     *string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, ErrInvalidInput
		}
		a.Name = name
	}
	if in.Species != nil {
		species, err := normalizeSpecies(*in.Species)
		if err != nil {
			return Animal{}, err
		}
		a.Species = species
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sex, err := normalizeSex(*in.Sex)
		if err != nil {
			return Animal{}, err
		}
		a.Sex = sex
	}
	if in.BirthDate.Present {
		a.BirthDate = in.BirthDate.Value
	}
	if in.Microchip != nil {
		a.Microchip = strings.TrimSpace(*in.Microchip)
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// SetStatus lo usan fosters/adoptions para mover el estado operativo.
// No se expone como endpoint directo.
func (s *Service) SetStatus(ctx context.Context, id string, status AnimalStatus) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	if a.Status == status {
		return a, nil
	}

	a.Status = status
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// Archive saca al animal de la operación (idempotente). No se borra.
func (s *Service) Archive(ctx context.Context, id string) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if a.Status == StatusArchived {
		return a, nil
	}
	return s.SetStatus(ctx, id, StatusArchived)
}

func normalizeSpecies(v string) (Species, error) {
	switch Species(strings.ToLower(strings.TrimSpace(v))) {
	case SpeciesDog:
		return SpeciesDog, nil
	case SpeciesCat:
		return SpeciesCat, nil
	case SpeciesOther, "":
		return SpeciesOther, nil
	default:
		return "", ErrInvalidInput
	}
}

func normalizeSex(v string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(v))) {
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	case SexUnknown, "":
		return SexUnknown, nil
	default:
		return "", ErrInvalidInput
	}
}

func normalizeIntakeKind(v string) (IntakeKind, error) {
	switch IntakeKind(strings.ToLower(strings.TrimSpace(v))) {
	case IntakeStray, "":
		return IntakeStray, nil
	case IntakeSurrender:
		return IntakeSurrender, nil
	case IntakeTransfer:
		return IntakeTransfer, nil
	case IntakeBornInCare:
		return IntakeBornInCare, nil
	default:
		return "", ErrInvalidInput
	}
}
