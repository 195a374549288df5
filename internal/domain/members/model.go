package members

import "time"

// Role define los roles soportados dentro de una organización.
// @Enum admin, staff, foster, volunteer
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStaff     Role = "staff"
	RoleFoster    Role = "foster"
	RoleVolunteer Role = "volunteer"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Member representa la pertenencia de un usuario a una organización.
// Las membresías revocadas no se borran (quedan para auditoría).
type Member struct {
	ID string

	OrgID string

	UserID string
	Email  string

	Role   Role
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

var roleRank = map[Role]int{
	RoleVolunteer: 1,
	RoleFoster:    2,
	RoleStaff:     3,
	RoleAdmin:     4,
}

// RoleAtLeast compara roles por jerarquía: volunteer < foster < staff < admin.
func RoleAtLeast(r, min Role) bool {
	return roleRank[r] >= roleRank[min]
}
