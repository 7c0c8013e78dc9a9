package service

import (
	"context"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_Get_EmptyCartIsNotNil(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := NewCartService(mockCartRepo, mockProductRepo, logger)

	mockCartRepo.On("GetItems", ctx, "U001").Return(nil, nil)

	resp, err := svc.Get(ctx, auth.Identity{UserID: "U001"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestCartService_PutItem(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	product := &model.Product{ID: "P001", Title: "Keyboard", Price: decimal.NewFromInt(150), Stock: 5}

	tests := []struct {
		name        string
		req         model.CartItemRequest
		mockProduct *model.Product
		expectedErr error
	}{
		{
			name:        "Success",
			req:         model.CartItemRequest{ProductID: "P001", Quantity: 2},
			mockProduct: product,
		},
		{
			name:        "Zero quantity",
			req:         model.CartItemRequest{ProductID: "P001", Quantity: 0},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name:        "Negative quantity",
			req:         model.CartItemRequest{ProductID: "P001", Quantity: -2},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name:        "Unknown product",
			req:         model.CartItemRequest{ProductID: "P404", Quantity: 1},
			mockProduct: nil,
			expectedErr: model.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCartRepo := new(MockCartRepository)
			mockProductRepo := new(MockProductRepository)
			svc := NewCartService(mockCartRepo, mockProductRepo, logger)

			if tt.req.Quantity >= 1 {
				mockProductRepo.On("GetByID", ctx, tt.req.ProductID).Return(tt.mockProduct, nil)
			}
			if tt.expectedErr == nil {
				item := model.CartItem{ProductID: tt.req.ProductID, Quantity: tt.req.Quantity}
				mockCartRepo.On("UpsertItem", ctx, "U001", item).Return(nil)
			}

			err := svc.PutItem(ctx, auth.Identity{UserID: "U001"}, tt.req)

			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
				mockCartRepo.AssertNotCalled(t, "UpsertItem")
			} else {
				require.NoError(t, err)
			}

			mockCartRepo.AssertExpectations(t)
			mockProductRepo.AssertExpectations(t)
		})
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := NewCartService(mockCartRepo, mockProductRepo, logger)

	mockCartRepo.On("RemoveItems", ctx, "U001", []string{"P001"}).Return(nil)

	err := svc.RemoveItem(ctx, auth.Identity{UserID: "U001"}, "P001")
	require.NoError(t, err)

	mockCartRepo.AssertExpectations(t)
}
