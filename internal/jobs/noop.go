package jobs

import (
	"context"

	"github.com/rs/zerolog"
)

// noopDispatcher implements Dispatcher without a broker. Selected at startup
// when no brokers are configured; jobs are logged and dropped.
type noopDispatcher struct {
	logger zerolog.Logger
}

// NewNoopDispatcher creates a dispatcher that only logs enqueued jobs.
func NewNoopDispatcher(logger zerolog.Logger) Dispatcher {
	return &noopDispatcher{
		logger: logger.With().Str("component", "job-dispatcher").Logger(),
	}
}

func (d *noopDispatcher) Enqueue(ctx context.Context, topic, key string, payload any) error {
	d.logger.Debug().Str("topic", topic).Str("key", key).Msg("job dispatch disabled, dropping job")
	return nil
}

func (d *noopDispatcher) Close() error {
	return nil
}
