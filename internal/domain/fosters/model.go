package fosters

import "time"

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Placement es la estadía de un animal en casa de un miembro foster.
// Un animal tiene a lo sumo un placement activo.
type Placement struct {
	ID    string
	OrgID string

	AnimalID string
	MemberID string

	Status Status

	StartedAt time.Time
	EndedAt   *time.Time

	Notes string
}
