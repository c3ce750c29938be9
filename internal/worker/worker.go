package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

// every runs fn on each tick of interval until ctx is cancelled. A failing
// run is logged and the loop carries on.
func every(ctx context.Context, interval time.Duration, name string, log *logger.Logger, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("starting worker", "worker", name, "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down worker", "worker", name)
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Error(err, "worker run failed", "worker", name)
			}
		}
	}
}
