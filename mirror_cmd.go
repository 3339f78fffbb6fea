package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/drivemirror/internal/drive"
	"github.com/tonimelisma/drivemirror/internal/mirror"
)

// runMirror is the root command's RunE: resolve config, obtain the initial
// token, and run the pipeline. Startup failures (config, initial token,
// remote root creation) return an error and a non-zero exit; individual
// file failures are logged and counted but do not affect the exit code.
func runMirror(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := buildLogger(cfg)

	maxFileSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		// Validation already parsed this; kept as a guard.
		return err
	}

	// SIGINT/SIGTERM cancel the run: the walker stops between entries and
	// workers stop between jobs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := defaultHTTPClient()
	store := drive.NewTokenStore("")
	auth := drive.NewAuthenticator(
		cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, cfg.TokenURL,
		store, httpClient, logger,
	)

	if err := auth.Refresh(ctx); err != nil {
		return fmt.Errorf("obtaining initial token: %w", err)
	}

	client := drive.NewClient(
		cfg.APIBaseURL, cfg.UploadBaseURL, httpClient, store, auth, logger,
	)

	summary, runErr := mirror.Run(ctx, client, mirror.Options{
		RootDir:        cfg.RootDir,
		RootFolderName: cfg.RootFolderName,
		MaxFileSize:    maxFileSize,
		Workers:        cfg.Workers,
		Retries:        cfg.Retries,
		Watch:          cfg.Watch,
	}, logger)

	logSummary(logger, summary)

	return runErr
}

// logSummary reports final counts so a run's outcome is visible without
// scraping per-file diagnostics.
func logSummary(logger *slog.Logger, s *mirror.Summary) {
	logger.Info("mirror finished",
		slog.String("root_folder_id", s.RootFolderID),
		slog.Int("folders_created", s.FoldersCreated),
		slog.Int("folders_failed", s.FoldersFailed),
		slog.Int("uploaded", s.Uploaded),
		slog.Int("uploads_failed", s.UploadsFailed),
		slog.Int("skipped_oversize", s.SkippedOversize),
		slog.Int("skipped_unreadable", s.SkippedUnreadable),
		slog.String("bytes", humanize.Bytes(uint64(s.BytesEnqueued))),
	)
}
