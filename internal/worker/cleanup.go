package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

// Cleaner deletes rows older than the retention window.
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanerFunc adapts a function to Cleaner.
type CleanerFunc func(ctx context.Context, retention time.Duration) (int64, error)

func (f CleanerFunc) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return f(ctx, retention)
}

type RetentionWorker struct {
	name      string
	cleaner   Cleaner
	retention time.Duration
	interval  time.Duration
	log       *logger.Logger
}

// NewRetentionWorker periodically removes what cleaner holds past retention.
// It backs both the audit log and the relayed outbox event cleanup.
func NewRetentionWorker(name string, cleaner Cleaner, retention, interval time.Duration, log *logger.Logger) *RetentionWorker {
	return &RetentionWorker{
		name:      name,
		cleaner:   cleaner,
		retention: retention,
		interval:  interval,
		log:       log,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	every(ctx, w.interval, w.name, w.log, w.run)
}

func (w *RetentionWorker) run(ctx context.Context) error {
	rows, err := w.cleaner.Cleanup(ctx, w.retention)
	if err != nil {
		return fmt.Errorf("failed to clean up %s: %w", w.name, err)
	}
	w.log.Info("retention cleanup finished", "worker", w.name, "deleted", rows, "retention", w.retention.String())
	return nil
}
