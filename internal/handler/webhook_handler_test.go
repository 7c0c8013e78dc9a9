package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventVerifier is a mock implementation of payment.EventVerifier.
type MockEventVerifier struct {
	mock.Mock
}

func (m *MockEventVerifier) Verify(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

func TestWebhookHandler_HandleEvent(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	event := &payment.Event{
		ID:      "evt_1",
		Type:    payment.EventPaymentSucceeded,
		OrderID: orderID.String(),
	}

	mockVerifier := new(MockEventVerifier)
	mockService := new(MockCheckoutService)
	h := NewWebhookHandler(mockVerifier, mockService, logger)

	payload := []byte(`{"id": "evt_1"}`)
	mockVerifier.On("Verify", payload, "sig_valid").Return(event, nil)
	mockService.On("HandlePaymentEvent", mock.Anything, *event).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "sig_valid")
	rec := httptest.NewRecorder()

	h.HandleEvent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp["received"])

	mockVerifier.AssertExpectations(t)
	mockService.AssertExpectations(t)
}

func TestWebhookHandler_HandleEvent_BadSignature(t *testing.T) {
	logger := zerolog.Nop()

	mockVerifier := new(MockEventVerifier)
	mockService := new(MockCheckoutService)
	h := NewWebhookHandler(mockVerifier, mockService, logger)

	payload := []byte(`{"id": "evt_1"}`)
	mockVerifier.On("Verify", payload, "sig_forged").Return(nil, errors.New("signature mismatch"))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "sig_forged")
	rec := httptest.NewRecorder()

	h.HandleEvent(rec, req)

	// Fail closed: the event body is never interpreted
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "HandlePaymentEvent")
}

func TestWebhookHandler_HandleEvent_MissingSignature(t *testing.T) {
	logger := zerolog.Nop()

	mockVerifier := new(MockEventVerifier)
	mockService := new(MockCheckoutService)
	h := NewWebhookHandler(mockVerifier, mockService, logger)

	payload := []byte(`{"id": "evt_1"}`)
	mockVerifier.On("Verify", payload, "").Return(nil, errors.New("missing signature"))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.HandleEvent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "HandlePaymentEvent")
}

func TestWebhookHandler_HandleEvent_UnknownOrder(t *testing.T) {
	logger := zerolog.Nop()

	event := &payment.Event{
		ID:      "evt_2",
		Type:    payment.EventPaymentSucceeded,
		OrderID: uuid.New().String(),
	}

	mockVerifier := new(MockEventVerifier)
	mockService := new(MockCheckoutService)
	h := NewWebhookHandler(mockVerifier, mockService, logger)

	payload := []byte(`{"id": "evt_2"}`)
	mockVerifier.On("Verify", payload, "sig_valid").Return(event, nil)
	mockService.On("HandlePaymentEvent", mock.Anything, *event).Return(model.ErrOrderNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "sig_valid")
	rec := httptest.NewRecorder()

	h.HandleEvent(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookHandler_HandleEvent_MethodNotAllowed(t *testing.T) {
	logger := zerolog.Nop()

	mockVerifier := new(MockEventVerifier)
	mockService := new(MockCheckoutService)
	h := NewWebhookHandler(mockVerifier, mockService, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/webhooks/payment", nil)
	rec := httptest.NewRecorder()

	h.HandleEvent(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	mockVerifier.AssertNotCalled(t, "Verify")
}
