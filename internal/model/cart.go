package model

// CartItem is one line of a user's mutable pre-order cart. At most one entry
// exists per product; quantity is always at least 1.
type CartItem struct {
	ProductID string `json:"productId" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// CartItemRequest is the payload for adding or updating a cart line.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartResponse is the payload returned by cart reads.
type CartResponse struct {
	Items []CartItem `json:"items"`
}
