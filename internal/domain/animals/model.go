package animals

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// IntakeKind indica cómo llegó el animal al refugio.
type IntakeKind string

const (
	IntakeStray      IntakeKind = "stray"
	IntakeSurrender  IntakeKind = "surrender"
	IntakeTransfer   IntakeKind = "transfer"
	IntakeBornInCare IntakeKind = "born_in_care"
)

// AnimalStatus es el estado operativo del animal dentro del refugio.
// Los cambios a fostered/adopted ocurren vía fosters/adoptions, no por PATCH directo.
type AnimalStatus string

const (
	StatusAvailable AnimalStatus = "available"
	StatusHold      AnimalStatus = "hold"
	StatusFostered  AnimalStatus = "fostered"
	StatusAdopted   AnimalStatus = "adopted"
	StatusArchived  AnimalStatus = "archived"
)

// Animal representa el perfil de un animal bajo cuidado de una organización.
type Animal struct {
	ID    string
	OrgID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate *time.Time
	Microchip string

	IntakeAt   time.Time
	IntakeKind IntakeKind

	Status AnimalStatus
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}
