package volunteers

import "time"

// Kind clasifica la actividad voluntaria.
type Kind string

const (
	KindWalking   Kind = "walking"
	KindCleaning  Kind = "cleaning"
	KindTransport Kind = "transport"
	KindEvent     Kind = "event"
	KindAdmin     Kind = "admin"
	KindOther     Kind = "other"
)

func validKind(k Kind) bool {
	switch k {
	case KindWalking, KindCleaning, KindTransport, KindEvent, KindAdmin, KindOther:
		return true
	}
	return false
}

// Activity es una entrada del log de horas voluntarias.
type Activity struct {
	ID string

	OrgID    string
	MemberID string

	Kind       Kind
	Hours      float64
	OccurredAt time.Time
	Notes      string

	CreatedAt time.Time
}
