package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/drivemirror/internal/config"
)

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "root-dir", "workers", "watch", "verbose", "quiet"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}

	assert.Equal(t, "drivemirror", cmd.Use)
}

func TestBuildLoggerLevels(t *testing.T) {
	t.Cleanup(func() {
		flagVerbose = false
		flagQuiet = false
	})

	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	logger := buildLogger(cfg)
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	// --verbose wins over the config level.
	flagVerbose = true
	logger = buildLogger(cfg)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	// --quiet wins over everything.
	flagVerbose = false
	flagQuiet = true
	logger = buildLogger(cfg)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
