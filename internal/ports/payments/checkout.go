// Package payments define el puerto hacia el proveedor de pagos.
// El código local solo reenvía montos; nunca calcula precios.
package payments

import "context"

type CheckoutInput struct {
	OrgID         string
	Reference     string // id local de la operación (ej. adopción)
	AmountCents   int64
	Currency      string
	CustomerEmail string
	Description   string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (CheckoutSession, error)
}
