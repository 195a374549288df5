package adoptions

import "time"

// Status es el ciclo de vida de una solicitud de adopción.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
	StatusCompleted Status = "completed"
)

// Application es una solicitud de adopción para un animal.
type Application struct {
	ID string

	OrgID    string
	AnimalID string

	ApplicantName  string
	ApplicantEmail string
	HomeNotes      string

	// FeeCents es la tarifa de adopción que se reenvía al checkout.
	// Acá no se calcula nada: el monto viene dado.
	FeeCents int64

	Status      Status
	DecidedBy   string
	DecidedAt   *time.Time
	CompletedAt *time.Time
	CheckoutRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}
