package auth

// Claims representa la información extraída del token.
// OrgID/Role son opcionales: el rol efectivo siempre se resuelve contra memberships.
type Claims struct {
	UserID string
	Email  string
	OrgID  string
	Role   string
}
