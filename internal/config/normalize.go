package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeVision()
	c.normalizeLookup()
	c.normalizeWatcher()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.SourcesDir, err = expandPath(c.Paths.SourcesDir); err != nil {
		return fmt.Errorf("paths.sources_dir: %w", err)
	}
	// An omitted processed_dir lands beside the configured sources_dir.
	if strings.TrimSpace(c.Paths.ProcessedDir) == "" {
		c.Paths.ProcessedDir = filepath.Join(c.Paths.SourcesDir, "processed")
	}
	if c.Paths.ProcessedDir, err = expandPath(c.Paths.ProcessedDir); err != nil {
		return fmt.Errorf("paths.processed_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStore() {
	if c.Store.MaxBackups <= 0 {
		c.Store.MaxBackups = defaultMaxBackups
	}
}

func (c *Config) normalizeVision() {
	if c.Vision.APIKey == "" {
		if value, ok := os.LookupEnv("ANTHROPIC_API_KEY"); ok {
			c.Vision.APIKey = value
		}
	}
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	c.Vision.BaseURL = strings.TrimRight(strings.TrimSpace(c.Vision.BaseURL), "/")
	if c.Vision.BaseURL == "" {
		c.Vision.BaseURL = defaultVisionBaseURL
	}
	if strings.TrimSpace(c.Vision.Model) == "" {
		c.Vision.Model = defaultVisionModel
	}
	if c.Vision.TimeoutSeconds <= 0 {
		c.Vision.TimeoutSeconds = defaultVisionTimeout
	}
}

func (c *Config) normalizeLookup() {
	if c.Lookup.TMDBAPIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.Lookup.TMDBAPIKey = value
		}
	}
	c.Lookup.TMDBAPIKey = strings.TrimSpace(c.Lookup.TMDBAPIKey)
	c.Lookup.UPCBaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.UPCBaseURL), "/")
	if c.Lookup.UPCBaseURL == "" {
		c.Lookup.UPCBaseURL = defaultUPCBaseURL
	}
	c.Lookup.TMDBBaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.TMDBBaseURL), "/")
	if c.Lookup.TMDBBaseURL == "" {
		c.Lookup.TMDBBaseURL = defaultTMDBBaseURL
	}
	if strings.TrimSpace(c.Lookup.TMDBLanguage) == "" {
		c.Lookup.TMDBLanguage = defaultTMDBLanguage
	}
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.SettleSeconds <= 0 {
		c.Watcher.SettleSeconds = defaultSettleSeconds
	}
	if c.Watcher.QueueSize <= 0 {
		c.Watcher.QueueSize = defaultQueueSize
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
