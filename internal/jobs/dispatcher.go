// Package jobs dispatches post-order side effects (confirmation email,
// further processing) to an external job runner. Dispatch is fire-and-forget
// from the request path: an enqueue failure is logged, never surfaced.
package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Topic names for dispatched jobs.
const TopicOrderCreated = "order.created"

// OrderCreatedJob is the payload carried by an order-created job. The job
// runner owns retries and the actual side effects.
type OrderCreatedJob struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  string    `json:"userId"`
	Email   string    `json:"email"`
}

// Dispatcher enqueues background jobs. The concrete runner and its retry
// policy live outside this service.
type Dispatcher interface {
	// Enqueue publishes payload to topic, keyed for partition affinity.
	Enqueue(ctx context.Context, topic, key string, payload any) error

	// Close releases resources held by the dispatcher.
	Close() error
}
