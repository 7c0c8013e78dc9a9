package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Summary(ctx context.Context, ident auth.Identity) (*model.CheckoutSummary, error) {
	args := m.Called(ctx, ident)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSummary), args.Error(1)
}

func (m *MockCheckoutService) CreatePaymentIntent(ctx context.Context, ident auth.Identity, addr model.Address) (*model.PaymentIntentResponse, error) {
	args := m.Called(ctx, ident, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntentResponse), args.Error(1)
}

func (m *MockCheckoutService) HandlePaymentEvent(ctx context.Context, event payment.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// withIdentity attaches a user identity to a test request.
func withIdentity(r *http.Request, ident auth.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), ident))
}

func testAddress() model.Address {
	return model.Address{
		FullName:     "Asha Rao",
		AddressLine1: "14 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
		Country:      "IN",
	}
}

func TestCheckoutHandler_Summary(t *testing.T) {
	logger := zerolog.Nop()
	ident := auth.Identity{UserID: "U001", Role: auth.RoleUser}

	summary := &model.CheckoutSummary{
		Amount:     decimal.NewFromInt(250),
		Currency:   "inr",
		TotalItems: 2,
	}

	mockService := new(MockCheckoutService)
	h := NewCheckoutHandler(mockService, logger)

	mockService.On("Summary", mock.Anything, ident).Return(summary, nil)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/checkout/summary", nil), ident)
	rec := httptest.NewRecorder()

	h.Summary(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.CheckoutSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 2, got.TotalItems)

	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_Summary_EmptyCart(t *testing.T) {
	logger := zerolog.Nop()
	ident := auth.Identity{UserID: "U001"}

	mockService := new(MockCheckoutService)
	h := NewCheckoutHandler(mockService, logger)

	mockService.On("Summary", mock.Anything, ident).Return(nil, model.ErrEmptyCart)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/checkout/summary", nil), ident)
	rec := httptest.NewRecorder()

	h.Summary(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeEmptyCart, resp.Error)
}

func TestCheckoutHandler_Summary_Unauthenticated(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockCheckoutService)
	h := NewCheckoutHandler(mockService, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/checkout/summary", nil)
	rec := httptest.NewRecorder()

	h.Summary(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockService.AssertNotCalled(t, "Summary")
}

func TestCheckoutHandler_CreatePaymentIntent(t *testing.T) {
	logger := zerolog.Nop()
	ident := auth.Identity{UserID: "U001"}
	orderID := uuid.New()

	mockService := new(MockCheckoutService)
	h := NewCheckoutHandler(mockService, logger)

	mockService.On("CreatePaymentIntent", mock.Anything, ident, testAddress()).
		Return(&model.PaymentIntentResponse{ClientSecret: "pi_123_secret", OrderID: orderID}, nil)

	body, _ := json.Marshal(model.PaymentIntentRequest{ShippingAddress: testAddress()})
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/checkout/payment-intent", bytes.NewReader(body)), ident)
	rec := httptest.NewRecorder()

	h.CreatePaymentIntent(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got model.PaymentIntentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "pi_123_secret", got.ClientSecret)
	assert.Equal(t, orderID, got.OrderID)

	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_CreatePaymentIntent_InvalidBody(t *testing.T) {
	logger := zerolog.Nop()
	ident := auth.Identity{UserID: "U001"}

	mockService := new(MockCheckoutService)
	h := NewCheckoutHandler(mockService, logger)

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/checkout/payment-intent", bytes.NewReader([]byte("{invalid"))), ident)
	rec := httptest.NewRecorder()

	h.CreatePaymentIntent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "CreatePaymentIntent")
}

func TestCheckoutHandler_CreatePaymentIntent_ErrorMapping(t *testing.T) {
	logger := zerolog.Nop()
	ident := auth.Identity{UserID: "U001"}

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{"Empty cart", model.ErrEmptyCart, http.StatusBadRequest, model.ErrCodeEmptyCart},
		{"Invalid address", model.ErrInvalidAddress("postalCode is required"), http.StatusBadRequest, model.ErrCodeInvalidAddress},
		{"Amount too small", model.ErrAmountTooSmall("50 inr"), http.StatusBadRequest, model.ErrCodeAmountTooSmall},
		{"Insufficient stock", model.ErrInsufficientStock("Keyboard"), http.StatusConflict, model.ErrCodeInsufficientStock},
		{"Stock race lost", model.ErrStockRaceLost("Keyboard"), http.StatusConflict, model.ErrCodeStockConflict},
		{"Payment upstream", model.ErrPaymentUpstream("could not create payment intent"), http.StatusBadGateway, model.ErrCodePaymentUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCheckoutService)
			h := NewCheckoutHandler(mockService, logger)

			mockService.On("CreatePaymentIntent", mock.Anything, ident, testAddress()).
				Return(nil, tt.serviceErr)

			body, _ := json.Marshal(model.PaymentIntentRequest{ShippingAddress: testAddress()})
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/checkout/payment-intent", bytes.NewReader(body)), ident)
			rec := httptest.NewRecorder()

			h.CreatePaymentIntent(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.expectedCode, resp.Error)
		})
	}
}
