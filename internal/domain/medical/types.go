package medical

// RecordType clasifica los registros clínicos.
type RecordType string

const (
	RecordTypeVaccine       RecordType = "VACCINE"
	RecordTypeDeworming     RecordType = "DEWORMING"
	RecordTypeFleaTreatment RecordType = "FLEA_TREATMENT"
	RecordTypeExam          RecordType = "EXAM"
	RecordTypeSurgery       RecordType = "SURGERY"
	RecordTypeMedication    RecordType = "MEDICATION"
	RecordTypeWeight        RecordType = "WEIGHT"
	RecordTypeNote          RecordType = "NOTE"
)

func validRecordType(t RecordType) bool {
	switch t {
	case RecordTypeVaccine, RecordTypeDeworming, RecordTypeFleaTreatment,
		RecordTypeExam, RecordTypeSurgery, RecordTypeMedication,
		RecordTypeWeight, RecordTypeNote:
		return true
	}
	return false
}

type RecordStatus string

const (
	RecordStatusActive RecordStatus = "active"
	RecordStatusVoided RecordStatus = "voided"
)

// TaskStatus es el estado de una tarea médica agendada.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusOverdue TaskStatus = "overdue"
)
