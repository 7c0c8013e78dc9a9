package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the asynchronous payment outcome for an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// OrderStatus is the canonical order lifecycle vocabulary, used everywhere an
// order status is created, updated or displayed.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPacked    OrderStatus = "packed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a member of the order status enum. Admins may
// set any valid status at any time; no transition graph is enforced.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPacked, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Address is the shipping address value object. All fields except
// AddressLine2 are required; the postal code is validated per-country.
type Address struct {
	FullName     string `json:"fullName" db:"full_name"`
	AddressLine1 string `json:"addressLine1" db:"address_line1"`
	AddressLine2 string `json:"addressLine2,omitempty" db:"address_line2"`
	City         string `json:"city" db:"city"`
	State        string `json:"state" db:"state"`
	PostalCode   string `json:"postalCode" db:"postal_code"`
	Country      string `json:"country" db:"country"`
}

// Timeline records when an order entered each lifecycle stage. Each stamp is
// write-once: re-entering a status never overwrites an existing timestamp.
type Timeline struct {
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty" db:"confirmed_at"`
	PackedAt    *time.Time `json:"packedAt,omitempty" db:"packed_at"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`
}

// Order is the immutable record of a completed checkout. Prices and the
// total are frozen at creation; only the status fields change afterwards.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          string          `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Currency        string          `json:"currency" db:"currency"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	OrderStatus     OrderStatus     `json:"orderStatus" db:"order_status"`
	PaymentIntentID *string         `json:"paymentIntentId,omitempty" db:"payment_intent_id"`
	ShippingAddress Address         `json:"shippingAddress"`
	Timeline        Timeline        `json:"timeline"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item snapshotted into an order at creation time.
// PriceAtPurchase is never recomputed from the current catalogue price.
type OrderItem struct {
	ID              uuid.UUID       `json:"-" db:"id"`
	OrderID         uuid.UUID       `json:"-" db:"order_id"`
	ProductID       string          `json:"productId" db:"product_id"`
	Title           string          `json:"title" db:"title"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase" db:"price_at_purchase"`
}

// CheckoutSummary is the read-only priced projection of the current cart.
type CheckoutSummary struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	TotalItems int             `json:"totalItems"`
}

// PaymentIntentRequest is the payload for creating a payment intent.
type PaymentIntentRequest struct {
	ShippingAddress Address `json:"shippingAddress"`
}

// PaymentIntentResponse is returned by a successful checkout commit.
type PaymentIntentResponse struct {
	ClientSecret string    `json:"clientSecret"`
	OrderID      uuid.UUID `json:"orderId"`
}

// StatusUpdateRequest is the payload for an admin order status update.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderListResponse is a paginated page of orders.
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// AdminOrderFilter narrows the admin order listing. Nil/zero fields are
// ignored when building the query.
type AdminOrderFilter struct {
	UserID        string
	ProductID     string
	OrderStatus   OrderStatus
	PaymentStatus PaymentStatus
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	From          *time.Time
	To            *time.Time
	SortBy        string
	SortDesc      bool
	Limit         int
	Offset        int
}
