// Package config implements TOML configuration loading, validation, and the
// override chain for drivemirror: defaults -> config file -> environment ->
// CLI flags. CLI flags always win, matching user expectations for one-off
// overrides without editing the config file.
package config

// Config is the full configuration for one run. All values are read-only
// for the process lifetime once resolved.
type Config struct {
	// OAuth2 client credentials and the long-lived refresh token. The
	// access token is never configured; it is obtained at startup and
	// renewed reactively when a call comes back 401.
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`

	// RootDir is the local tree to mirror. Defaults to the user's
	// Documents directory.
	RootDir string `toml:"root_dir"`

	// RootFolderName names the remote root folder created for each run.
	RootFolderName string `toml:"root_folder_name"`

	// MaxFileSize is a human-readable size ("1GB", "512MiB"); files
	// strictly larger are skipped.
	MaxFileSize string `toml:"max_file_size"`

	// Workers is the upload worker pool size.
	Workers int `toml:"workers"`

	// Retries is the number of additional attempts per failed upload.
	// 0 drops a job on its first failure.
	Retries int `toml:"retries"`

	// Watch keeps the process running after the initial mirror, uploading
	// new and changed files as they appear.
	Watch bool `toml:"watch"`

	LogLevel string `toml:"log_level"`

	// Endpoint overrides, primarily for tests.
	APIBaseURL    string `toml:"api_base_url"`
	UploadBaseURL string `toml:"upload_base_url"`
	TokenURL      string `toml:"token_url"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to zero value" — --watch=false is different from not
// passing --watch at all.
type CLIOverrides struct {
	ConfigPath string // --config flag (empty = use default)
	RootDir    string // --root-dir flag
	Workers    *int   // --workers flag
	Watch      *bool  // --watch flag
}

// MaxFileSizeBytes parses the configured size limit into bytes.
func (c *Config) MaxFileSizeBytes() (int64, error) {
	return parseSize(c.MaxFileSize)
}
