package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Store.MaxBackups < 1 {
		return errors.New("store.max_backups must be at least 1")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.SourcesDir == "" {
		return errors.New("paths.sources_dir must be set")
	}
	if c.Paths.DataDir == c.Paths.SourcesDir {
		return errors.New("paths.data_dir and paths.sources_dir must differ")
	}
	if c.Paths.ProcessedDir == c.Paths.SourcesDir {
		return errors.New("paths.processed_dir must not equal paths.sources_dir")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// VisionConfigured reports whether the Claude vision API key is present.
// Photo and barcode imports require it; the rest of the app does not.
func (c *Config) VisionConfigured() bool {
	return c.Vision.APIKey != ""
}

// TMDBConfigured reports whether TMDB metadata enrichment is available.
func (c *Config) TMDBConfigured() bool {
	return c.Lookup.TMDBAPIKey != ""
}
