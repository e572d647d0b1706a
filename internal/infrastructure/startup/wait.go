package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"
)

// DefaultBackoff is used while waiting for databases at boot.
func DefaultBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: 200 * time.Millisecond, Max: 5 * time.Second, Factor: 2, Jitter: true}
}

// Wait calls ping until it succeeds or ctx is done, sleeping b.Duration()
// between attempts.
func Wait(ctx context.Context, name string, b *backoff.Backoff, ping func(ctx context.Context) error, logger *zap.Logger) error {
	defer b.Reset()
	for {
		err := ping(ctx)
		if err == nil {
			return nil
		}

		delay := b.Duration()
		logger.Warn("dependency not ready",
			zap.String("dependency", name),
			zap.Float64("attempt", b.Attempt()),
			zap.Duration("retryIn", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w: last error: %v", name, ctx.Err(), err)
		case <-time.After(delay):
		}
	}
}
