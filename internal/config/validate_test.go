package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config that passes validation, rooted in a temp dir.
func validConfig(t *testing.T) *Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.ClientID = "cid"
	cfg.ClientSecret = "csec"
	cfg.RefreshToken = "rtok"
	cfg.RootDir = t.TempDir()

	return cfg
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, Validate(validConfig(t)))
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := validConfig(t)
	cfg.ClientID = ""
	cfg.ClientSecret = ""
	cfg.RefreshToken = ""

	err := Validate(cfg)

	require.Error(t, err)
	// All problems reported at once.
	assert.Contains(t, err.Error(), "client_id")
	assert.Contains(t, err.Error(), "client_secret")
	assert.Contains(t, err.Error(), "refresh_token")
}

func TestValidateWorkersRange(t *testing.T) {
	for _, workers := range []int{0, -1, 65} {
		cfg := validConfig(t)
		cfg.Workers = workers

		assert.Error(t, Validate(cfg), "workers=%d", workers)
	}

	for _, workers := range []int{1, 8, 64} {
		cfg := validConfig(t)
		cfg.Workers = workers

		assert.NoError(t, Validate(cfg), "workers=%d", workers)
	}
}

func TestValidateRetriesRange(t *testing.T) {
	cfg := validConfig(t)
	cfg.Retries = 11

	assert.Error(t, Validate(cfg))

	cfg.Retries = 10
	assert.NoError(t, Validate(cfg))
}

func TestValidateMaxFileSize(t *testing.T) {
	cfg := validConfig(t)
	cfg.MaxFileSize = "bogus"

	assert.Error(t, Validate(cfg))

	cfg.MaxFileSize = "0"
	assert.Error(t, Validate(cfg))

	cfg.MaxFileSize = "100MiB"
	assert.NoError(t, Validate(cfg))
}

func TestValidateLogLevel(t *testing.T) {
	cfg := validConfig(t)
	cfg.LogLevel = "chatty"

	assert.Error(t, Validate(cfg))
}

func TestValidateRootDirMustExist(t *testing.T) {
	cfg := validConfig(t)
	cfg.RootDir = filepath.Join(t.TempDir(), "absent")

	err := Validate(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "root_dir")
}

func TestValidateRootDirMustBeDirectory(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	cfg.RootDir = file

	err := Validate(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestValidateEmptyRootDir(t *testing.T) {
	cfg := validConfig(t)
	cfg.RootDir = ""

	assert.Error(t, Validate(cfg))
}

func TestDefaultRootDirUnderHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Documents"), DefaultRootDir())
}
