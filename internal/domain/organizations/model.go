package organizations

import "time"

// Tier define el nivel de suscripción de una organización.
// @Enum free, premium
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Organization es el tenant: todo el resto de la data cuelga de OrgID.
type Organization struct {
	ID string

	Name         string
	City         string
	ContactEmail string

	Tier   Tier
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
