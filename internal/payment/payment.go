// Package payment adapts the external payment processor. Intent creation and
// webhook signature verification sit behind interfaces so tests substitute
// doubles without processor credentials.
package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types this subsystem reacts to. Anything else is acknowledged and
// ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// IntentRequest carries the server-computed amount for a new payment intent.
// The amount is never taken from the client.
type IntentRequest struct {
	OrderID  uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Email    string
}

// Intent is the processor's handle for an in-progress payment.
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook event with the order reference extracted from
// the processor metadata.
type Event struct {
	ID      string
	Type    string
	OrderID string
}

// Gateway creates payment intents against the external processor.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// EventVerifier checks the authenticity of an inbound webhook payload before
// any of it is trusted. Verification fails closed on signature mismatch.
type EventVerifier interface {
	Verify(payload []byte, signature string) (*Event, error)
}
