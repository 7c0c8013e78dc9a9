package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access. Stock is
// the authoritative inventory counter this subsystem contends over.
type ProductRepository interface {
	// List retrieves products matching the filter, with pagination.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when the
	// product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// DecrementStock conditionally decrements a product's stock within the
	// provided transaction. The update only succeeds while stock >= quantity
	// at the moment of the write; it returns false when zero rows were
	// affected because a concurrent checkout won the race.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error)

	// AdjustStock applies an admin stock delta, clamped so stock never goes
	// negative. Returns the updated product, or nil when it does not exist.
	AdjustStock(ctx context.Context, id string, delta int) (*model.Product, error)
}

// CartRepository defines the interface for per-user cart data access.
type CartRepository interface {
	// GetItems retrieves the user's cart lines.
	GetItems(ctx context.Context, userID string) ([]model.CartItem, error)

	// UpsertItem adds a cart line or replaces the quantity of an existing one.
	UpsertItem(ctx context.Context, userID string, item model.CartItem) error

	// RemoveItems deletes the named product lines from the user's cart.
	RemoveItems(ctx context.Context, userID string, productIDs []string) error

	// Clear removes every line from the user's cart.
	Clear(ctx context.Context, userID string) error

	// ClearTx removes every line from the user's cart within a transaction.
	ClearTx(ctx context.Context, tx pgx.Tx, userID string) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's snapshot items within the
	// provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items. Returns nil when the order
	// does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a page of the user's orders, newest first, along
	// with the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, int, error)

	// ListAdmin retrieves a filtered, sorted page of all orders with the
	// total count.
	ListAdmin(ctx context.Context, filter model.AdminOrderFilter) ([]model.Order, int, error)

	// SetPaymentIntentID records the external payment intent id on an order.
	SetPaymentIntentID(ctx context.Context, id uuid.UUID, intentID string) error

	// SetPaymentStatus updates an order's payment status.
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error

	// UpdateStatus persists a new order status and stamps the matching
	// timeline field if not already stamped. Returns the updated order, or
	// nil when it does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}
