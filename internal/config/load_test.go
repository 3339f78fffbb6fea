package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a TOML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "drivemirror.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadParsesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
client_id = "cid"
client_secret = "csec"
refresh_token = "rtok"
workers = 4
max_file_size = "500MB"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "cid", cfg.ClientID)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "500MB", cfg.MaxFileSize)
	// Unset keys keep their defaults.
	assert.Equal(t, "ImportantFiles", cfg.RootFolderName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://www.googleapis.com", cfg.APIBaseURL)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `client_idd = "typo"`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_idd")
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Workers, cfg.Workers)
}

func TestResolveOverrideChain(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, `
client_id = "file-cid"
client_secret = "file-csec"
refresh_token = "file-rtok"
workers = 2
`)

	env := EnvOverrides{
		ClientID: "env-cid",
		RootDir:  root,
	}

	workers := 3
	watch := true
	cli := CLIOverrides{
		ConfigPath: path,
		Workers:    &workers,
		Watch:      &watch,
	}

	cfg, err := Resolve(env, cli)

	require.NoError(t, err)
	// Env beats the file, CLI beats both.
	assert.Equal(t, "env-cid", cfg.ClientID)
	assert.Equal(t, "file-csec", cfg.ClientSecret)
	assert.Equal(t, root, cfg.RootDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Watch)
}

func TestResolveCLIRootDirBeatsEnv(t *testing.T) {
	envRoot := t.TempDir()
	cliRoot := t.TempDir()
	path := writeConfig(t, `
client_id = "cid"
client_secret = "csec"
refresh_token = "rtok"
`)

	cfg, err := Resolve(
		EnvOverrides{RootDir: envRoot},
		CLIOverrides{ConfigPath: path, RootDir: cliRoot},
	)

	require.NoError(t, err)
	assert.Equal(t, cliRoot, cfg.RootDir)
}

func TestResolveValidatesResult(t *testing.T) {
	path := writeConfig(t, `client_id = "cid"`)

	_, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_secret")
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv(EnvClientID, "e-cid")
	t.Setenv(EnvRefreshToken, "e-rtok")

	env := ReadEnvOverrides()

	assert.Equal(t, "e-cid", env.ClientID)
	assert.Equal(t, "e-rtok", env.RefreshToken)
	assert.Empty(t, env.ClientSecret)
}
