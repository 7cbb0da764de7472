package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ovpnstatus/internal/logging"
)

// Watch runs a cycle immediately and then every interval until ctx is
// cancelled. Cycle failures are logged and do not stop the loop.
func Watch(ctx context.Context, opts Options, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info("watching status report",
		logging.File(opts.StatusPath),
		logging.Output(opts.OutputPath),
		"interval", interval.String(),
	)

	for {
		if _, err := Run(ctx, opts); err != nil && !errors.Is(err, ErrNoData) && ctx.Err() == nil {
			logging.Warn("cycle failed, retrying next tick", logging.Err(err))
		}

		select {
		case <-ctx.Done():
			logging.Info("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}
