package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// defaultQueueDepth buffers the job channel so the walker is not lock-stepped
// with the workers on every file.
const defaultQueueDepth = 64

// Options configures one mirror run. All fields are read-only for the run.
type Options struct {
	RootDir        string // local tree to mirror
	RootFolderName string // name of the remote root folder created for this run
	MaxFileSize    int64  // files strictly larger are skipped
	Workers        int    // upload worker count
	Retries        int    // additional upload attempts per job, 0 = none
	Watch          bool   // keep watching the tree after the initial walk
	QueueDepth     int    // job channel buffer, 0 = default
}

// Summary reports what one run did. No state is persisted; re-running the
// tool creates a fresh remote root and a duplicate tree.
type Summary struct {
	RootFolderID      string
	FoldersCreated    int
	FoldersFailed     int
	Uploaded          int
	UploadsFailed     int
	SkippedOversize   int
	SkippedUnreadable int
	BytesEnqueued     int64
}

// Run performs one full mirror: create the remote root folder, start the
// worker pool, walk the local tree while workers drain the queue, close the
// queue, and wait for in-flight transfers to finish. The returned Summary is
// valid even when err is non-nil, so a canceled run still reports what it
// managed to do.
//
// Startup failures (unusable root directory, root folder creation) are
// returned as errors; per-item failures during the walk and uploads are
// logged, counted, and never abort the run.
func Run(ctx context.Context, svc Service, opts Options, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	summary := &Summary{}

	// Non-directory root is a startup error, checked before any remote call
	// so a typo'd path doesn't leave an empty folder behind.
	info, err := os.Stat(opts.RootDir)
	if err != nil {
		return summary, fmt.Errorf("mirror: resolving root directory: %w", err)
	}

	if !info.IsDir() {
		return summary, fmt.Errorf("mirror: root %s is not a directory", opts.RootDir)
	}

	rootID, err := svc.CreateFolder(ctx, opts.RootFolderName, "")
	if err != nil {
		return summary, fmt.Errorf("mirror: creating remote root folder: %w", err)
	}

	summary.RootFolderID = rootID

	logger.Info("remote root folder created",
		slog.String("name", opts.RootFolderName),
		slog.String("id", rootID),
	)

	depth := opts.QueueDepth
	if depth <= 0 {
		depth = defaultQueueDepth
	}

	jobs := make(chan Job, depth)
	pool := NewPool(svc, opts.Workers, opts.Retries, logger)

	poolDone := make(chan error, 1)
	go func() {
		poolDone <- pool.Run(ctx, jobs)
	}()

	walker := NewWalker(svc, opts.MaxFileSize, logger)
	walkErr := walker.Walk(ctx, opts.RootDir, rootID, jobs)

	if walkErr == nil && opts.Watch {
		walkErr = runWatch(ctx, svc, walker, opts, jobs, logger)
	}

	// No more producers: close the queue and wait for the drain.
	close(jobs)
	poolErr := <-poolDone

	ws := walker.Stats()
	summary.FoldersCreated = ws.FoldersCreated
	summary.FoldersFailed = ws.FoldersFailed
	summary.SkippedOversize = ws.SkippedOversize
	summary.SkippedUnreadable = ws.SkippedUnreadable
	summary.BytesEnqueued = ws.BytesEnqueued
	summary.Uploaded, summary.UploadsFailed = pool.Stats()

	return summary, errors.Join(ignoreCancel(walkErr), ignoreCancel(poolErr))
}

// runWatch keeps the producer side alive after the initial walk, feeding
// the same queue from filesystem events until the context is canceled.
func runWatch(
	ctx context.Context, svc Service, walker *Walker, opts Options,
	jobs chan<- Job, logger *slog.Logger,
) error {
	watcher, err := NewWatcher(svc, walker.FolderIDs(), opts.MaxFileSize, jobs, logger)
	if err != nil {
		return fmt.Errorf("mirror: starting watcher: %w", err)
	}
	defer watcher.Close()

	return watcher.Run(ctx)
}

// ignoreCancel drops context cancellation errors: a canceled run is a user
// action, not a failure worth reporting twice.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
