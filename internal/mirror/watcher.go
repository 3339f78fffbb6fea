package mirror

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/unicode/norm"
)

// debounceInterval is how long a file must stay quiet before it is
// uploaded. Editors and copies fire bursts of writes; only the last one
// matters.
const debounceInterval = 500 * time.Millisecond

// readyBuffer sizes the channel carrying debounced paths back to the run loop.
const readyBuffer = 100

// Watcher keeps the mirror live after the initial walk: new and changed
// files are enqueued as upload jobs, and new directories get remote folders
// created before anything beneath them is uploaded. It feeds the same job
// channel as the walker and never closes it; that stays the orchestrator's
// call.
type Watcher struct {
	svc         Service
	jobs        chan<- Job
	maxFileSize int64
	logger      *slog.Logger
	fsw         *fsnotify.Watcher

	// folders maps local directory paths to remote folder ids. Only the
	// Run goroutine touches it.
	folders map[string]string

	// Debounce: per-path timer reset on every event; fires into ready.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer
	ready      chan string
	done       chan struct{}
}

// NewWatcher creates a Watcher seeded with the walker's directory map and
// registers a watch for every known directory.
func NewWatcher(
	svc Service, folderIDs map[string]string, maxFileSize int64,
	jobs chan<- Job, logger *slog.Logger,
) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("mirror: creating fsnotify watcher: %w", err)
	}

	folders := make(map[string]string, len(folderIDs))
	for dir, id := range folderIDs {
		folders[dir] = id

		if watchErr := fsw.Add(dir); watchErr != nil {
			logger.Warn("failed to watch directory",
				slog.String("path", dir),
				slog.String("error", watchErr.Error()),
			)
		}
	}

	return &Watcher{
		svc:         svc,
		jobs:        jobs,
		maxFileSize: maxFileSize,
		logger:      logger,
		fsw:         fsw,
		folders:     folders,
		debounce:    make(map[string]*time.Timer),
		ready:       make(chan string, readyBuffer),
		done:        make(chan struct{}),
	}, nil
}

// Run processes filesystem events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)

	w.logger.Info("watching for changes", slog.Int("directories", len(w.folders)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			w.handleEvent(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("watcher error", slog.String("error", err.Error()))
		case path := <-w.ready:
			w.flush(ctx, path)
		}
	}
}

// Close releases the underlying fsnotify watcher and stops pending timers.
func (w *Watcher) Close() error {
	w.debounceMu.Lock()
	for _, t := range w.debounce {
		t.Stop()
	}
	w.debounceMu.Unlock()

	return w.fsw.Close()
}

// handleEvent routes a single fsnotify event. Directory creation is handled
// synchronously so the remote folder exists before any file under it is
// enqueued; file events are debounced.
func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		// Gone already (temp file, rapid rename). Nothing to do.
		w.logger.Debug("event target vanished", slog.String("path", ev.Name))
		return
	}

	if info.IsDir() {
		if ev.Op.Has(fsnotify.Create) {
			w.addDir(ctx, ev.Name)
		}

		return
	}

	w.scheduleUpload(ev.Name)
}

// addDir creates the remote folder for a newly appeared directory and
// mirrors anything already inside it (a directory moved into the tree
// arrives with its contents but without per-file events).
func (w *Watcher) addDir(ctx context.Context, path string) {
	parentID, ok := w.folders[filepath.Dir(path)]
	if !ok {
		w.logger.Warn("new directory under untracked parent, skipping",
			slog.String("path", path),
		)

		return
	}

	id, err := w.svc.CreateFolder(ctx, norm.NFC.String(filepath.Base(path)), parentID)
	if err != nil {
		w.logger.Error("folder creation failed, skipping new directory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return
	}

	w.folders[path] = id

	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}

	walker := NewWalker(w.svc, w.maxFileSize, w.logger)
	if err := walker.Walk(ctx, path, id, w.jobs); err != nil {
		w.logger.Error("mirroring new directory failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return
	}

	// Track and watch subdirectories the walk created.
	for dir, dirID := range walker.FolderIDs() {
		if _, known := w.folders[dir]; known {
			continue
		}

		w.folders[dir] = dirID

		if watchErr := w.fsw.Add(dir); watchErr != nil {
			w.logger.Warn("failed to watch new directory",
				slog.String("path", dir),
				slog.String("error", watchErr.Error()),
			)
		}
	}
}

// scheduleUpload resets the debounce timer for a file path.
func (w *Watcher) scheduleUpload(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounce[path]; ok {
		t.Reset(debounceInterval)
		return
	}

	w.debounce[path] = time.AfterFunc(debounceInterval, func() {
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

// flush enqueues an upload for a path whose debounce timer fired.
func (w *Watcher) flush(ctx context.Context, path string) {
	w.debounceMu.Lock()
	delete(w.debounce, path)
	w.debounceMu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Debug("file vanished before upload", slog.String("path", path))
		return
	}

	if !info.Mode().IsRegular() {
		return
	}

	if info.Size() > w.maxFileSize {
		w.logger.Warn("skipping file over size limit",
			slog.String("path", path),
			slog.String("size", humanize.Bytes(uint64(info.Size()))),
		)

		return
	}

	parentID, ok := w.folders[filepath.Dir(path)]
	if !ok {
		w.logger.Warn("file under untracked directory, skipping",
			slog.String("path", path),
		)

		return
	}

	select {
	case w.jobs <- Job{Path: path, ParentID: parentID}:
		w.logger.Debug("change enqueued", slog.String("path", path))
	case <-ctx.Done():
	}
}
