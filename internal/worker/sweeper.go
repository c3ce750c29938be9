package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StatusSweeper moves open appointments along the lifecycle even when
// nobody lists them.
type StatusSweeper struct {
	appointments Sweeper
	interval     time.Duration
	log          *logger.Logger
}

func NewStatusSweeper(appointments Sweeper, interval time.Duration, log *logger.Logger) *StatusSweeper {
	return &StatusSweeper{appointments: appointments, interval: interval, log: log}
}

func (w *StatusSweeper) Start(ctx context.Context) {
	every(ctx, w.interval, "status_sweeper", w.log, w.run)
}

func (w *StatusSweeper) run(ctx context.Context) error {
	moved, err := w.appointments.Sweep(ctx)
	if err != nil {
		return err
	}
	if moved > 0 {
		w.log.Info("appointment statuses advanced", "count", moved)
	}
	return nil
}
