package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uep-attendance-analytics/pkg/jobs"
)

const snapshotWarmJob = "snapshot_warm"

// SnapshotWarmer reloads the record snapshot in the background so the first
// request after a refresh does not pay for the fetch.
type SnapshotWarmer struct {
	loader SnapshotLoader
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewSnapshotWarmer builds a warmer backed by a single-worker queue.
func NewSnapshotWarmer(loader SnapshotLoader, retryDelay time.Duration, logger *zap.Logger) *SnapshotWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &SnapshotWarmer{loader: loader, logger: logger}
	w.queue = jobs.NewQueue(snapshotWarmJob, w.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: 3,
		RetryDelay: retryDelay,
		Logger:     logger,
	})
	return w
}

// Start launches the worker.
func (w *SnapshotWarmer) Start(ctx context.Context) { w.queue.Start(ctx) }

// Stop waits for the worker to exit.
func (w *SnapshotWarmer) Stop() { w.queue.Stop() }

// Schedule queues a reload. A reload already waiting absorbs the request.
func (w *SnapshotWarmer) Schedule() error {
	err := w.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: snapshotWarmJob})
	if errors.Is(err, jobs.ErrQueueFull) {
		return nil
	}
	return err
}

func (w *SnapshotWarmer) handle(ctx context.Context, job jobs.Job) error {
	snap, err := w.loader.Load(ctx)
	if err != nil {
		return err
	}
	w.logger.Debug("snapshot warmed",
		zap.String("job_id", job.ID),
		zap.Int("events", len(snap.Events)),
		zap.Int("checkins", len(snap.CheckIns)),
	)
	return nil
}
