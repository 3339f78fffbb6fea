package config

import "os"

// Environment variable names for overrides. Credentials in particular are
// commonly injected via the environment rather than written to disk.
const (
	EnvConfig       = "DRIVEMIRROR_CONFIG"
	EnvClientID     = "DRIVEMIRROR_CLIENT_ID"
	EnvClientSecret = "DRIVEMIRROR_CLIENT_SECRET"
	EnvRefreshToken = "DRIVEMIRROR_REFRESH_TOKEN"
	EnvRootDir      = "DRIVEMIRROR_ROOT_DIR"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath   string
	ClientID     string
	ClientSecret string
	RefreshToken string
	RootDir      string
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
		RootDir:      os.Getenv(EnvRootDir),
	}
}
