package mirror

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// retryBaseDelay is the first backoff step when per-job retries are enabled.
const retryBaseDelay = 500 * time.Millisecond

// Pool is the bounded set of upload workers. Each worker loops: dequeue a
// job, transfer it, log and count the outcome, continue. A failure in one
// worker never affects another's subsequent jobs; the pool drains naturally
// once the job channel is closed and emptied.
type Pool struct {
	uploads Uploader
	workers int
	retries int
	logger  *slog.Logger

	uploaded atomic.Int64
	failed   atomic.Int64
}

// NewPool creates a pool of the given size. retries is the number of
// additional attempts per job after the first failure; 0 preserves the
// drop-on-first-failure policy.
func NewPool(uploads Uploader, workers, retries int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Pool{
		uploads: uploads,
		workers: workers,
		retries: retries,
		logger:  logger,
	}
}

// Run starts the workers and blocks until the jobs channel is closed and
// drained, or the context is canceled. Individual job failures are counted,
// not returned; the only error Run reports is cancellation.
func (p *Pool) Run(ctx context.Context, jobs <-chan Job) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.worker(ctx, jobs)
		})
	}

	p.logger.Debug("worker pool started", slog.Int("workers", p.workers))

	return g.Wait()
}

// worker is the loop of a single goroutine: block on the queue, process,
// repeat. Exits cleanly when the queue is closed and empty.
func (p *Pool) worker(ctx context.Context, jobs <-chan Job) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}

			p.process(ctx, job)
		}
	}
}

// process transfers one job, applying the configured bounded retry.
// All outcomes end here: success and failure both just update counters,
// and a failed job is never re-enqueued.
func (p *Pool) process(ctx context.Context, job Job) {
	backoff := retry.WithMaxRetries(uint64(p.retries), retry.NewFibonacci(retryBaseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		uploadErr := p.uploads.UploadFile(ctx, job.ParentID, job.Path)
		if uploadErr != nil && ctx.Err() == nil {
			return retry.RetryableError(uploadErr)
		}

		return uploadErr
	})
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("upload failed",
			slog.String("path", job.Path),
			slog.String("error", err.Error()),
		)

		return
	}

	p.uploaded.Add(1)
}

// Stats returns the number of successful and failed uploads so far.
// Safe to call concurrently; stable once Run has returned.
func (p *Pool) Stats() (uploaded, failed int) {
	return int(p.uploaded.Load()), int(p.failed.Load())
}
