// Package stripe habla con la API de Stripe directamente por HTTP.
// Solo cubrimos lo que usamos: crear checkout sessions y verificar
// firmas de webhook. Los montos se reenvían tal cual llegan.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shelter-ops/internal/ports/payments"
)

const (
	defaultAPIBase = "https://api.stripe.com"
	defaultTimeout = 10 * time.Second

	maxRespBody = 1 << 20 // 1 MB
)

var (
	ErrNotConfigured = errors.New("stripe client not configured")
	ErrUpstream      = errors.New("stripe upstream error")
)

type Client struct {
	apiBase   string
	secretKey string
	http      *http.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		apiBase:   defaultAPIBase,
		secretKey: strings.TrimSpace(secretKey),
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.secretKey != ""
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession crea una sesión de pago única por el monto
// dado. client_reference_id lleva el id de la org para que el webhook
// pueda rutear el evento.
func (c *Client) CreateCheckoutSession(ctx context.Context, in payments.CheckoutInput) (payments.CheckoutSession, error) {
	if !c.IsConfigured() {
		return payments.CheckoutSession{}, ErrNotConfigured
	}
	if in.AmountCents <= 0 {
		return payments.CheckoutSession{}, fmt.Errorf("%w: amount must be positive", ErrUpstream)
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "usd"
	}

	// La API de Stripe es form-encoded, no JSON
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", in.OrgID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(in.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", in.Description)
	if in.CustomerEmail != "" {
		form.Set("customer_email", in.CustomerEmail)
	}
	if in.Reference != "" {
		form.Set("metadata[reference]", in.Reference)
	}
	if in.SuccessURL != "" {
		form.Set("success_url", in.SuccessURL)
	}
	if in.CancelURL != "" {
		form.Set("cancel_url", in.CancelURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return payments.CheckoutSession{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return payments.CheckoutSession{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRespBody))
	if err != nil {
		return payments.CheckoutSession{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payments.CheckoutSession{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out checkoutSessionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return payments.CheckoutSession{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return payments.CheckoutSession{ID: out.ID, URL: out.URL}, nil
}
