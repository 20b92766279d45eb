package testsupport

import (
	"path/filepath"
	"testing"

	"discshelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.SourcesDir = filepath.Join(base, "sources")
	cfg.Paths.ProcessedDir = filepath.Join(base, "sources", "processed")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Watcher.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMaxBackups overrides backup retention on the test config.
func WithMaxBackups(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Store.MaxBackups = n
	}
}

// WithVisionKey sets the Claude vision API key on the test config.
func WithVisionKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Vision.APIKey = key
	}
}

// WithWatcherEnabled turns the photo watcher on for tests that exercise it.
func WithWatcherEnabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Watcher.Enabled = true
	}
}
