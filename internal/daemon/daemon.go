package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"discshelf/internal/api"
	"discshelf/internal/collection"
	"discshelf/internal/config"
	"discshelf/internal/importer"
	"discshelf/internal/notifications"
	"discshelf/internal/pipeline"
	"discshelf/internal/services/barcode"
	"discshelf/internal/services/tmdb"
	"discshelf/internal/services/vision"
)

// Daemon owns the process-wide services: the collection store, job history,
// photo pipeline, and the HTTP API in front of them.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store *collection.Store
	jobs  *pipeline.JobStore
	pipe  *pipeline.Pipeline

	handler  http.Handler
	listener net.Listener
	server   *http.Server

	lockPath string
	lock     *flock.Flock

	unsubscribe func()
	running     atomic.Bool
	cancel      context.CancelFunc
}

// New builds a fully wired daemon from configuration. Directories are
// created and stores opened here; nothing starts serving until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires a config")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := collection.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	jobs, err := pipeline.OpenJobStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	visionClient := vision.NewClient(cfg)
	tmdbClient := tmdb.NewClient(cfg)
	barcodes := barcode.NewService(cfg, visionClient, tmdbClient, logger)
	im := importer.New(cfg, store, logger)
	notifier := notifications.NewService(cfg)
	pipe := pipeline.New(cfg, jobs, im, visionClient, barcodes, notifier, logger)

	lockPath := filepath.Join(cfg.Paths.DataDir, "discshelf.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		jobs:     jobs,
		pipe:     pipe,
		handler:  api.NewServer(cfg, store, im, pipe, visionClient, barcodes, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, launches the pipeline, and begins
// serving the API on the configured bind address.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another discshelf instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.pipe.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start pipeline: %w", err)
	}
	d.watchEvents()

	listener, err := net.Listen("tcp", d.cfg.Paths.APIBind)
	if err != nil {
		d.pipe.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener
	server := &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	d.server = server

	// Both goroutines close over the local server: Stop nils d.server
	// concurrently with the context-cancel path.
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("api server error", "error", err)
		}
	}()
	go func() {
		<-runCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	d.running.Store(true)
	d.logger.Info("discshelf daemon started",
		"address", listener.Addr().String(),
		"collection", d.cfg.CollectionPath(),
		"watcher", d.cfg.Watcher.Enabled)
	return nil
}

// watchEvents mirrors pipeline job transitions into the daemon log.
func (d *Daemon) watchEvents() {
	events, cancel := d.pipe.Hub().Subscribe()
	d.unsubscribe = cancel
	go func() {
		for event := range events {
			if event.Status == pipeline.JobError {
				d.logger.Warn("import job failed",
					"job", event.JobID, "file", event.FileName, "error", event.Error)
				continue
			}
			d.logger.Info("import job update",
				"job", event.JobID, "file", event.FileName, "status", event.Status,
				"detected", event.Detected, "added", event.Added, "skipped", event.Skipped)
		}
	}()
}

// Addr reports the bound API address, or empty when not serving.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Stop shuts everything down in dependency order and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = d.server.Shutdown(shutdownCtx)
		cancel()
		d.server = nil
		d.listener = nil
	}
	d.pipe.Stop()
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release instance lock", "error", err)
	}
	d.running.Store(false)
	d.logger.Info("discshelf daemon stopped")
}

// Close stops the daemon and closes its stores.
func (d *Daemon) Close() error {
	d.Stop()
	if d.jobs != nil {
		return d.jobs.Close()
	}
	return nil
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Store exposes the collection store for in-process CLI commands.
func (d *Daemon) Store() *collection.Store {
	return d.store
}

// Pipeline exposes the photo pipeline for in-process CLI commands.
func (d *Daemon) Pipeline() *pipeline.Pipeline {
	return d.pipe
}

// LockPath returns the instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
