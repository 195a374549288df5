package capabilities

import "context"

// Resolver responde si una organización tiene habilitada una capability
// (gating por tier de suscripción).
type Resolver interface {
	Has(ctx context.Context, orgID string, capability string) (bool, error)
}
