package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopDispatcher(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	d := NewNoopDispatcher(logger)

	job := OrderCreatedJob{
		OrderID: uuid.New(),
		UserID:  "U001",
		Email:   "asha@example.com",
	}

	// Enqueue accepts and drops the job
	require.NoError(t, d.Enqueue(ctx, TopicOrderCreated, "U001", job))
	assert.NoError(t, d.Close())
}
