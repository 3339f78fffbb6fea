package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/drivemirror/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagRootDir    string
	flagWorkers    int
	flagWatch      bool
	flagVerbose    bool
	flagQuiet      bool
)

// newRootCmd builds and returns the root command. Running it performs one
// full mirror of the configured local root into a freshly created remote
// root folder. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drivemirror",
		Short:   "Mirror a local directory tree into Google Drive",
		Long: "drivemirror recreates a local folder structure in Google Drive and " +
			"uploads file contents across a pool of concurrent workers, renewing " +
			"the access token transparently when it expires.",
		Version: version,
		// Silence Cobra's default error/usage printing — main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runMirror,
	}

	cmd.Flags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.Flags().StringVar(&flagRootDir, "root-dir", "", "local directory to mirror")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "upload worker count")
	cmd.Flags().BoolVar(&flagWatch, "watch", false, "keep watching for changes after the initial mirror")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	return cmd
}

// resolveConfig applies the override chain using the bound flag values.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		RootDir:    flagRootDir,
	}

	// Only pass flags to the resolver if the user explicitly set them.
	if cmd.Flags().Changed("workers") {
		cli.Workers = &flagWorkers
	}

	if cmd.Flags().Changed("watch") {
		cli.Watch = &flagWatch
	}

	return config.Resolve(config.ReadEnvOverrides(), cli)
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win. Output is human-readable
// text on a terminal and JSON when stderr is redirected.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo

	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// defaultHTTPClient returns the HTTP client shared by all workers. No
// overall timeout: a multi-hundred-megabyte upload routinely outlives any
// fixed cap, and the run context bounds the request lifetime instead.
func defaultHTTPClient() *http.Client {
	return &http.Client{}
}
