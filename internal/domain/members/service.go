package members

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
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

type InviteInput struct {
	OrgID  string
	UserID string
	Email  string
	Role   Role
}

// Invite crea (o actualiza) la invitación de un usuario a la org.
// Si ya existe una membresía no-revocada para (org, user), se reutiliza:
// se actualiza el rol y se revoca cualquier duplicado sucio.
func (s *Service) Invite(ctx context.Context, in InviteInput) (Member, error) {
	orgID := strings.TrimSpace(in.OrgID)
	userID := strings.TrimSpace(in.UserID)
	email := strings.TrimSpace(in.Email)

	if orgID == "" || userID == "" {
		return Member{}, ErrInvalidInput
	}

	role, err := normalizeRole(in.Role)
	if err != nil {
		return Member{}, err
	}

	now := s.now()

	existing, allMatches, err := s.findLatestMatch(ctx, orgID, userID)
	if err == nil && existing.ID != "" {
		// Si el "winner" está revoked, permitimos re-invitar creando uno nuevo.
		if existing.Status != StatusRevoked {
			_ = s.revokeOtherMatches(ctx, existing.ID, allMatches, now)

			// Re-invitar permite "cambiar" el rol sin endpoint adicional.
			existing.Role = role
			if email != "" {
				existing.Email = email
			}
			existing.UpdatedAt = now

			if err := s.repo.Update(ctx, existing); err != nil {
				return Member{}, err
			}
			return existing, nil
		}
	}

	m := Member{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		UserID:    userID,
		Email:     email,
		Role:      role,
		Status:    StatusInvited,
		CreatedAt: now,
		UpdatedAt: now,
		RevokedAt: nil,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// CreateAdmin da de alta al creador de la org como admin activo (sin invite).
func (s *Service) CreateAdmin(ctx context.Context, orgID, userID, email string) (Member, error) {
	orgID = strings.TrimSpace(orgID)
	userID = strings.TrimSpace(userID)

	if orgID == "" || userID == "" {
		return Member{}, ErrInvalidInput
	}

	now := s.now()
	m := Member{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		UserID:    userID,
		Email:     strings.TrimSpace(email),
		Role:      RoleAdmin,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Service) Accept(ctx context.Context, memberID, userID string) (Member, error) {
	memberID = strings.TrimSpace(memberID)
	userID = strings.TrimSpace(userID)

	if memberID == "" || userID == "" {
		return Member{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		return Member{}, ErrNotFound
	}

	if m.UserID != userID {
		return Member{}, ErrForbidden
	}
	if m.Status == StatusRevoked {
		return Member{}, ErrBadState
	}

	// Idempotente
	if m.Status == StatusActive {
		return m, nil
	}
	if m.Status != StatusInvited {
		return Member{}, ErrBadState
	}

	now := s.now()
	m.Status = StatusActive
	m.UpdatedAt = now

	if err := s.repo.Update(ctx, m); err != nil {
		return Member{}, err
	}

	// Invariante: una sola membresía activa por (org, user).
	// Si había data sucia (invites/activos duplicados), se revocan.
	if matches, err := s.repo.ListByOrg(ctx, m.OrgID); err == nil {
		same := make([]Member, 0)
		for _, o := range matches {
			if o.UserID == m.UserID {
				same = append(same, o)
			}
		}
		_ = s.revokeOtherMatches(ctx, m.ID, same, now)
	}

	return m, nil
}

func (s *Service) Revoke(ctx context.Context, memberID string) (Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return Member{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		return Member{}, ErrNotFound
	}

	// Idempotente
	if m.Status == StatusRevoked {
		return m, nil
	}

	now := s.now()
	m.Status = StatusRevoked
	m.UpdatedAt = now
	m.RevokedAt = &now

	if err := s.repo.Update(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, memberID string) (Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return Member{}, ErrInvalidInput
	}
	m, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) ListByOrg(ctx context.Context, orgID string) ([]Member, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Member, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// ActiveMember resuelve la membresía activa de un usuario en una org.
// Es el punto único de autorización que usan los handlers de los demás módulos.
func (s *Service) ActiveMember(ctx context.Context, orgID, userID string) (Member, error) {
	orgID = strings.TrimSpace(orgID)
	userID = strings.TrimSpace(userID)

	if orgID == "" || userID == "" {
		return Member{}, ErrInvalidInput
	}
	m, err := s.repo.GetActiveMember(ctx, orgID, userID)
	if err != nil {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) findLatestMatch(ctx context.Context, orgID, userID string) (Member, []Member, error) {
	items, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return Member{}, nil, err
	}

	matches := make([]Member, 0)
	var winner Member
	hasWinner := false

	for _, m := range items {
		if m.OrgID != orgID || m.UserID != userID {
			continue
		}
		matches = append(matches, m)

		if !hasWinner || m.UpdatedAt.After(winner.UpdatedAt) {
			winner = m
			hasWinner = true
		}
	}

	if !hasWinner {
		return Member{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Member, now time.Time) error {
	for _, m := range matches {
		if m.ID == "" || m.ID == winnerID {
			continue
		}
		if m.Status == StatusRevoked {
			continue
		}
		m.Status = StatusRevoked
		m.UpdatedAt = now
		m.RevokedAt = &now
		_ = s.repo.Update(ctx, m) // best-effort
	}
	return nil
}

func normalizeRole(r Role) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(string(r))))
	if role == "" {
		// default útil: volunteer (el rol de menor privilegio)
		return RoleVolunteer, nil
	}
	if _, ok := roleRank[role]; !ok {
		return "", ErrInvalidInput
	}
	return role, nil
}
