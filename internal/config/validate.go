package config

import (
	"errors"
	"fmt"
	"os"
)

// Validation range constants.
const (
	minWorkers = 1
	maxWorkers = 64
	maxRetries = 10
)

// validLogLevels are the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks all configuration values and returns every error found,
// joined, so users see a complete report and can fix all issues in one
// pass. A failure here is a startup-time configuration error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.ClientID == "" {
		errs = append(errs, errors.New("client_id is required"))
	}

	if cfg.ClientSecret == "" {
		errs = append(errs, errors.New("client_secret is required"))
	}

	if cfg.RefreshToken == "" {
		errs = append(errs, errors.New("refresh_token is required"))
	}

	if cfg.RootFolderName == "" {
		errs = append(errs, errors.New("root_folder_name must not be empty"))
	}

	if cfg.Workers < minWorkers || cfg.Workers > maxWorkers {
		errs = append(errs, fmt.Errorf("workers must be between %d and %d, got %d",
			minWorkers, maxWorkers, cfg.Workers))
	}

	if cfg.Retries < 0 || cfg.Retries > maxRetries {
		errs = append(errs, fmt.Errorf("retries must be between 0 and %d, got %d",
			maxRetries, cfg.Retries))
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", cfg.LogLevel))
	}

	errs = append(errs, validateMaxFileSize(cfg), validateRootDir(cfg))

	return errors.Join(errs...)
}

func validateMaxFileSize(cfg *Config) error {
	size, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return fmt.Errorf("max_file_size: %w", err)
	}

	if size <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %q", cfg.MaxFileSize)
	}

	return nil
}

func validateRootDir(cfg *Config) error {
	if cfg.RootDir == "" {
		return errors.New("root_dir is required (could not resolve a default Documents directory)")
	}

	info, err := os.Stat(cfg.RootDir)
	if err != nil {
		return fmt.Errorf("root_dir: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("root_dir %s is not a directory", cfg.RootDir)
	}

	return nil
}
