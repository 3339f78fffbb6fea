// Package mirror implements the concurrent upload pipeline: a depth-first
// walker that recreates the local folder structure remotely and produces
// upload jobs, a bounded worker pool that consumes them, and the
// orchestrator that ties both to a drain signal. An optional fsnotify
// watcher keeps feeding the pool after the initial walk.
package mirror

import "context"

// Job is one unit of work: upload this local file under this already
// existing remote folder. Jobs are immutable and consumed exactly once.
// A failed job is logged and dropped; there is no retry queue beyond the
// bounded per-job retry the pool applies.
type Job struct {
	Path     string // absolute local file path
	ParentID string // remote folder id, created before the job was enqueued
}

// FolderCreator creates a remote folder and returns its id.
// parentID is empty for a top-level folder.
type FolderCreator interface {
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
}

// Uploader transfers one local file under a remote parent folder.
type Uploader interface {
	UploadFile(ctx context.Context, parentID, localPath string) error
}

// Service is the remote storage surface the pipeline depends on.
// *drive.Client implements it; tests substitute fakes.
type Service interface {
	FolderCreator
	Uploader
}
