package mirror

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"
)

// WalkStats counts what the walker did. The walker runs on a single
// goroutine, so plain ints are safe; read after Walk returns.
type WalkStats struct {
	FoldersCreated    int
	FoldersFailed     int
	JobsEnqueued      int
	BytesEnqueued     int64
	SkippedOversize   int
	SkippedUnreadable int
}

// Walker enumerates the local tree depth-first, creating each remote folder
// synchronously before descending into it, and enqueues an upload job for
// every regular file within the size limit. Folder creation failures skip
// that subtree only; siblings continue.
type Walker struct {
	folders     FolderCreator
	maxFileSize int64
	logger      *slog.Logger

	stats     WalkStats
	folderIDs map[string]string // local dir path -> remote folder id
}

// NewWalker creates a Walker. Files strictly larger than maxFileSize are
// skipped; a file exactly at the limit is enqueued.
func NewWalker(folders FolderCreator, maxFileSize int64, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Walker{
		folders:     folders,
		maxFileSize: maxFileSize,
		logger:      logger,
		folderIDs:   make(map[string]string),
	}
}

// Walk mirrors the tree rooted at root, whose remote folder rootFolderID
// has already been created, pushing jobs onto jobs. The caller closes the
// channel after Walk returns. Returns an error only for a non-directory
// root, an unreadable root, or context cancellation; everything below the
// root is log-and-skip.
func (w *Walker) Walk(ctx context.Context, root, rootFolderID string, jobs chan<- Job) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("mirror: stat root %s: %w", root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("mirror: root %s is not a directory", root)
	}

	w.folderIDs[root] = rootFolderID

	w.logger.Info("walk starting", slog.String("root", root))

	if err := w.walkDir(ctx, root, rootFolderID, jobs); err != nil {
		return err
	}

	w.logger.Info("walk complete",
		slog.Int("folders_created", w.stats.FoldersCreated),
		slog.Int("jobs_enqueued", w.stats.JobsEnqueued),
	)

	return nil
}

// walkDir processes one directory's entries in filesystem order.
// Returns an error for an unreadable directory or a canceled context;
// per-entry failures are logged and skipped.
func (w *Walker) walkDir(ctx context.Context, dir, parentID string, jobs chan<- Job) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("mirror: reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			w.enterDir(ctx, path, entry.Name(), parentID, jobs)
			continue
		}

		if err := w.enqueueFile(ctx, path, entry, parentID, jobs); err != nil {
			return err
		}
	}

	return nil
}

// enterDir creates the remote folder for a subdirectory and descends into
// it. On creation failure the whole subtree is skipped; on a descent error
// (unreadable directory) that directory's remaining entries are skipped.
// Cancellation is not swallowed: the next ctx.Err() check in the caller
// stops the walk.
func (w *Walker) enterDir(ctx context.Context, path, name, parentID string, jobs chan<- Job) {
	id, err := w.folders.CreateFolder(ctx, norm.NFC.String(name), parentID)
	if err != nil {
		w.stats.FoldersFailed++
		w.logger.Error("folder creation failed, skipping subtree",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return
	}

	w.stats.FoldersCreated++
	w.folderIDs[path] = id

	if err := w.walkDir(ctx, path, id, jobs); err != nil {
		w.logger.Error("walk failed, skipping rest of directory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// enqueueFile applies the size and regularity checks and pushes a Job.
// Only context cancellation propagates as an error.
func (w *Walker) enqueueFile(
	ctx context.Context, path string, entry os.DirEntry, parentID string, jobs chan<- Job,
) error {
	info, err := entry.Info()
	if err != nil {
		w.stats.SkippedUnreadable++
		w.logger.Warn("skipping file, cannot read metadata",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return nil
	}

	if !info.Mode().IsRegular() {
		w.logger.Debug("skipping non-regular file", slog.String("path", path))
		return nil
	}

	if info.Size() > w.maxFileSize {
		w.stats.SkippedOversize++
		w.logger.Warn("skipping file over size limit",
			slog.String("path", path),
			slog.String("size", humanize.Bytes(uint64(info.Size()))),
			slog.String("limit", humanize.Bytes(uint64(w.maxFileSize))),
		)

		return nil
	}

	select {
	case jobs <- Job{Path: path, ParentID: parentID}:
		w.stats.JobsEnqueued++
		w.stats.BytesEnqueued += info.Size()
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Stats returns the walk counters. Valid after Walk returns.
func (w *Walker) Stats() WalkStats {
	return w.stats
}

// FolderIDs returns the mapping from local directory paths to the remote
// folder ids created for them, including the root. The watcher seeds its
// own map from this; the walker does not mutate it after Walk returns.
func (w *Walker) FolderIDs() map[string]string {
	return w.folderIDs
}
