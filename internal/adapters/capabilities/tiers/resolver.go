// Package tiers resuelve capabilities a partir del tier de suscripción
// de la org. El mapa tier→capabilities vive acá; billing solo sabe de
// suscripciones.
package tiers

import (
	"context"
	"errors"
	"os"
	"strings"

	"shelter-ops/internal/domain/billing"
)

// Capabilities por tier. El tier free tiene reportes de solo lectura y
// el tope de animales activos; premium levanta ambos.
var tierCapabilities = map[string]map[string]bool{
	"free": {
		"reports:view": true,
	},
	"premium": {
		"reports:view":      true,
		"reports:export":    true,
		"animals:unlimited": true,
	},
}

type Resolver struct {
	billingSvc *billing.Service
	allowAll   bool
}

// NewResolver crea el resolver. Si ALLOW_ALL_CAPABILITIES=true (env),
// todo devuelve true (modo dev).
func NewResolver(billingSvc *billing.Service) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_CAPABILITIES")), "true")
	return &Resolver{
		billingSvc: billingSvc,
		allowAll:   allowAll,
	}
}

func (r *Resolver) Has(ctx context.Context, orgID string, capability string) (bool, error) {
	capability = strings.TrimSpace(capability)
	if capability == "" {
		return false, errors.New("capability required")
	}

	if r.allowAll {
		return true, nil
	}

	sub, err := r.billingSvc.Subscription(ctx, orgID)
	if err != nil {
		return false, err
	}

	caps, ok := tierCapabilities[effectiveTier(sub)]
	if !ok {
		caps = tierCapabilities["free"]
	}
	return caps[capability], nil
}

// Resolve devuelve el mapa completo de capabilities de la org.
func (r *Resolver) Resolve(ctx context.Context, orgID string) (map[string]bool, error) {
	if r.allowAll {
		return map[string]bool{"*": true}, nil
	}

	sub, err := r.billingSvc.Subscription(ctx, orgID)
	if err != nil {
		return nil, err
	}

	caps, ok := tierCapabilities[effectiveTier(sub)]
	if !ok {
		caps = tierCapabilities["free"]
	}

	out := make(map[string]bool, len(caps))
	for k, v := range caps {
		out[k] = v
	}
	return out, nil
}

// Una suscripción past_due conserva su tier; canceled cae a free.
// El webhook ya baja el tier al cancelar, esto es solo defensa en lectura.
func effectiveTier(sub billing.Subscription) string {
	if sub.Status == billing.SubStatusCanceled {
		return "free"
	}
	return sub.Tier
}
