package billing

import "time"

// SubStatus es el estado de cobro de la suscripción.
type SubStatus string

const (
	SubStatusActive   SubStatus = "active"
	SubStatusPastDue  SubStatus = "past_due"
	SubStatusCanceled SubStatus = "canceled"
)

// Subscription es la suscripción de una org. Toda org tiene exactamente
// una; por defecto free/active.
type Subscription struct {
	ID    string
	OrgID string

	Tier   string // free | premium
	Status SubStatus

	ExternalCustomerID string
	ExternalSubID      string
	CurrentPeriodEnd   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BillingEvent es un evento de webhook recibido, se guarde lo que se
// guarde del dispatch. ExternalEventID es único: los replays no se
// procesan dos veces.
type BillingEvent struct {
	ID              string
	OrgID           string
	ExternalEventID string
	Type            string
	Payload         []byte
	ReceivedAt      time.Time
}
