package reports

// StatusCount es el total de animales en un estado.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MonthlyFlow son ingresos y adopciones completadas de un mes.
type MonthlyFlow struct {
	Month     string `json:"month"` // YYYY-MM
	Intakes   int    `json:"intakes"`
	Adoptions int    `json:"adoptions"`
}

// MemberHours son las horas voluntarias acumuladas de un miembro.
type MemberHours struct {
	MemberID string  `json:"member_id"`
	Hours    float64 `json:"hours"`
}
