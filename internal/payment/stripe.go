package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// metadataOrderID is the metadata key linking a payment intent back to the
// order it pays for.
const metadataOrderID = "order_id"

// stripeGateway implements Gateway against the Stripe API.
type stripeGateway struct {
	api    *client.API
	logger zerolog.Logger
}

// NewStripeGateway creates a Stripe-backed payment gateway.
func NewStripeGateway(secretKey string, logger zerolog.Logger) Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &stripeGateway{
		api:    api,
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// CreateIntent creates a payment intent for the frozen, server-computed
// amount, tagged with the order id so the webhook can find its way back.
func (g *stripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.AddMetadata(metadataOrderID, req.OrderID.String())

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Str("amount", req.Amount.String()).
			Msg("failed to create payment intent")
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Info().
		Str("order_id", req.OrderID.String()).
		Str("intent_id", intent.ID).
		Msg("payment intent created")

	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// toMinorUnits converts a major-unit decimal amount to the processor's
// integer minor units (e.g. 250.00 -> 25000).
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// stripeVerifier implements EventVerifier using the shared webhook secret.
// The underlying check is a constant-time HMAC-SHA256 comparison.
type stripeVerifier struct {
	secret string
	logger zerolog.Logger
}

// NewStripeVerifier creates a webhook event verifier for the shared secret.
func NewStripeVerifier(secret string, logger zerolog.Logger) EventVerifier {
	return &stripeVerifier{
		secret: secret,
		logger: logger.With().Str("component", "webhook-verifier").Logger(),
	}
}

// Verify checks the signature header against the payload and extracts the
// order reference from the event metadata.
func (v *stripeVerifier) Verify(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, v.secret)
	if err != nil {
		v.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	out := &Event{
		ID:   event.ID,
		Type: string(event.Type),
	}

	// Only payment-intent events carry the metadata we care about.
	switch out.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var data struct {
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		out.OrderID = data.Metadata[metadataOrderID]
	}

	return out, nil
}
