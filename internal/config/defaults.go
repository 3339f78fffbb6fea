package config

import (
	"os"
	"path/filepath"
)

// Default values for configuration options. These are "layer 0" of the
// override chain and match the behavior of running with no config file at
// all: mirror the Documents folder into a fresh "ImportantFiles" remote
// root with 8 workers and a 1 GB size cap.
const (
	defaultRootFolderName = "ImportantFiles"
	defaultMaxFileSize    = "1GB"
	defaultWorkers        = 8
	defaultRetries        = 0
	defaultLogLevel       = "info"
	defaultAPIBaseURL     = "https://www.googleapis.com"
	defaultUploadBaseURL  = "https://www.googleapis.com"
	defaultTokenURL       = "https://oauth2.googleapis.com/token"
)

// configFileName is the config file looked up under the user config dir.
const configFileName = "drivemirror.toml"

// DefaultConfig returns a Config populated with all default values.
// Used as the starting point for TOML decoding so unset fields keep their
// defaults, and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		RootDir:        DefaultRootDir(),
		RootFolderName: defaultRootFolderName,
		MaxFileSize:    defaultMaxFileSize,
		Workers:        defaultWorkers,
		Retries:        defaultRetries,
		LogLevel:       defaultLogLevel,
		APIBaseURL:     defaultAPIBaseURL,
		UploadBaseURL:  defaultUploadBaseURL,
		TokenURL:       defaultTokenURL,
	}
}

// DefaultRootDir returns the user's Documents directory, or empty if the
// home directory cannot be resolved (validation rejects the empty value
// unless overridden).
func DefaultRootDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, "Documents")
}

// DefaultConfigPath returns the default config file location under the
// platform config directory (e.g. ~/.config/drivemirror/drivemirror.toml).
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return configFileName
	}

	return filepath.Join(dir, "drivemirror", configFileName)
}
