package handler

import (
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBody caps the request body we are willing to read from the
// payment processor.
const maxWebhookBody = 1 << 16

// WebhookHandler receives asynchronous payment confirmations from the
// external processor. The route is unauthenticated by user session; trust
// comes entirely from the signature check.
type WebhookHandler struct {
	verifier payment.EventVerifier
	service  service.CheckoutService
	logger   zerolog.Logger
}

// NewWebhookHandler creates a new payment webhook handler.
func NewWebhookHandler(verifier payment.EventVerifier, service service.CheckoutService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		service:  service,
		logger:   logger.With().Str("handler", "webhook").Logger(),
	}
}

// HandleEvent handles POST /api/webhooks/payment requests.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to read request body", h.logger)
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		// Fail closed: an unverifiable event is never processed.
		writeError(w, http.StatusBadRequest, model.ErrCodeUnauthorised, "webhook signature verification failed", h.logger)
		return
	}

	if err := h.service.HandlePaymentEvent(r.Context(), *event); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
