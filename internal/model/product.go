package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product. This subsystem reads price and
// title, and contends over stock — the authoritative inventory counter.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search  string
	InStock bool
	Limit   int
	Offset  int
}

// StockAdjustmentRequest is the payload for an admin stock adjustment.
type StockAdjustmentRequest struct {
	Delta int `json:"delta"`
}
