package medical

import "time"

// Record es una entrada del historial clínico de un animal.
// No se borra: se anula (voided) y queda en el timeline.
type Record struct {
	ID    string
	OrgID string

	AnimalID string

	Type RecordType

	OccurredAt time.Time
	RecordedAt time.Time

	Title string
	Notes string

	// Detalle opcional para vacunas/medicaciones/preventivos.
	Product string
	Dose    string

	ActorMemberID string

	Status RecordStatus
}

// Task es una tarea médica agendada (próxima vacuna, control, etc).
type Task struct {
	ID    string
	OrgID string

	AnimalID string

	Type  RecordType
	Title string

	DueOn time.Time // date; la hora se ignora

	Status      TaskStatus
	CompletedAt *time.Time
	// Record creado al completar (si se registró uno).
	RecordID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
