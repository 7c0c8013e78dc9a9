package service

import (
	"context"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
)

// ProductService defines read operations over the catalogue plus the admin
// stock adjustment.
type ProductService interface {
	// List retrieves products matching the filter, read-through cached.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// AdjustStock applies an admin stock delta to a product.
	AdjustStock(ctx context.Context, id string, delta int) (*model.Product, error)
}

// CartService defines operations over the caller's own cart.
type CartService interface {
	// Get retrieves the caller's cart.
	Get(ctx context.Context, ident auth.Identity) (*model.CartResponse, error)

	// PutItem adds a cart line or replaces an existing line's quantity.
	PutItem(ctx context.Context, ident auth.Identity, req model.CartItemRequest) error

	// RemoveItem deletes one cart line.
	RemoveItem(ctx context.Context, ident auth.Identity, productID string) error
}

// CheckoutService turns the mutable cart into an immutable order.
type CheckoutService interface {
	// Summary computes a priced, validated view of the current cart without
	// reserving stock.
	Summary(ctx context.Context, ident auth.Identity) (*model.CheckoutSummary, error)

	// CreatePaymentIntent commits the checkout (order + stock decrement +
	// cart clear, atomically) and creates a processor payment intent for the
	// frozen amount.
	CreatePaymentIntent(ctx context.Context, ident auth.Identity, addr model.Address) (*model.PaymentIntentResponse, error)

	// HandlePaymentEvent applies a verified webhook event to the order it
	// references. Safe to invoke more than once per event.
	HandlePaymentEvent(ctx context.Context, event payment.Event) error
}

// OrderService defines order read and lifecycle operations.
type OrderService interface {
	// MyOrders retrieves a page of the caller's orders, newest first.
	MyOrders(ctx context.Context, ident auth.Identity, page, limit int) (*model.OrderListResponse, error)

	// GetByID retrieves one order. Non-admin callers may only fetch their own.
	GetByID(ctx context.Context, ident auth.Identity, id uuid.UUID) (*model.Order, error)

	// AdminList retrieves a filtered, sorted page of all orders.
	AdminList(ctx context.Context, filter model.AdminOrderFilter) (*model.OrderListResponse, error)

	// UpdateStatus transitions an order to a new lifecycle status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}
