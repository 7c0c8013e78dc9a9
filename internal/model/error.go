package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidAddress    = "INVALID_ADDRESS"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeStockConflict     = "STOCK_CONFLICT"
	ErrCodeAmountTooSmall    = "AMOUNT_TOO_SMALL"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodePaymentUpstream   = "PAYMENT_UPSTREAM"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message so
// handlers can map business failures to HTTP statuses without string matching.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrForbidden       = NewDomainError(ErrCodeForbidden, "You are not allowed to access this resource")
	ErrInvalidStatus   = NewDomainError(ErrCodeInvalidStatus, "Invalid order status")
)

// ErrOutOfStock reports a cart line whose quantity exceeds the product's
// current stock at summary time.
func ErrOutOfStock(title string) *DomainError {
	return NewDomainError(ErrCodeOutOfStock, fmt.Sprintf("Product %q is out of stock", title))
}

// ErrInsufficientStock reports a stock shortfall detected during checkout
// commit, naming the offending product so the user can correct their cart.
func ErrInsufficientStock(title string) *DomainError {
	return NewDomainError(ErrCodeInsufficientStock, fmt.Sprintf("Insufficient stock for product %q", title))
}

// ErrStockRaceLost reports a conditional stock decrement that affected zero
// rows because a concurrent checkout won the race.
func ErrStockRaceLost(title string) *DomainError {
	return NewDomainError(ErrCodeStockConflict, fmt.Sprintf("Product %q was just purchased by another customer, please retry", title))
}

// ErrInvalidAddress reports a missing or malformed shipping address field.
func ErrInvalidAddress(detail string) *DomainError {
	return NewDomainError(ErrCodeInvalidAddress, fmt.Sprintf("Invalid shipping address: %s", detail))
}

// ErrAmountTooSmall reports an order total below the processor's minimum.
func ErrAmountTooSmall(minimum string) *DomainError {
	return NewDomainError(ErrCodeAmountTooSmall, fmt.Sprintf("Order total must be at least %s", minimum))
}

// ErrPaymentUpstream reports a failure talking to the payment processor.
func ErrPaymentUpstream(detail string) *DomainError {
	return NewDomainError(ErrCodePaymentUpstream, fmt.Sprintf("Payment processor error: %s", detail))
}
