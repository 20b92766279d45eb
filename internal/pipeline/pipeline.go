package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"discshelf/internal/config"
	"discshelf/internal/importer"
	"discshelf/internal/notifications"
	"discshelf/internal/services"
	"discshelf/internal/services/barcode"
	"discshelf/internal/services/vision"
)

// Detector identifies movie cases in a shelf photo.
type Detector interface {
	Configured() bool
	IdentifyMovies(ctx context.Context, imagePath string) ([]vision.Candidate, error)
}

// BarcodeResolver resolves a barcode photo to a single movie candidate.
type BarcodeResolver interface {
	Configured() bool
	Lookup(ctx context.Context, imagePath string) (barcode.Result, error)
}

// Outcome summarizes one processed photo.
type Outcome struct {
	Job      Job                    `json:"job"`
	Detected []vision.Candidate     `json:"detected"`
	Added    int                    `json:"added"`
	Skipped  []importer.SkippedItem `json:"skipped,omitempty"`
}

// Pipeline owns the photo import queue and its single processing loop.
type Pipeline struct {
	cfg      *config.Config
	jobs     *JobStore
	hub      *Hub
	importer *importer.Importer
	detector Detector
	barcodes BarcodeResolver
	notifier notifications.Service
	logger   *slog.Logger

	queue   chan string
	watcher *Watcher

	// processMu enforces single-flight processing across the drain loop
	// and synchronous API requests.
	processMu  sync.Mutex
	processing atomic.Bool

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New wires a pipeline. The watcher is not started until Start.
func New(cfg *config.Config, jobs *JobStore, im *importer.Importer, detector Detector, barcodes BarcodeResolver, notifier notifications.Service, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	queueSize := cfg.Watcher.QueueSize
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Pipeline{
		cfg:      cfg,
		jobs:     jobs,
		hub:      NewHub(),
		importer: im,
		detector: detector,
		barcodes: barcodes,
		notifier: notifier,
		logger:   logger,
		queue:    make(chan string, queueSize),
	}
}

// Hub exposes the event hub for subscribers.
func (p *Pipeline) Hub() *Hub {
	return p.hub
}

// Start launches the drain loop and, when enabled, the filesystem watcher.
func (p *Pipeline) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	if p.cfg.Watcher.Enabled {
		settle := time.Duration(p.cfg.Watcher.SettleSeconds) * time.Second
		watcher := NewWatcher(p.cfg.Paths.SourcesDir, p.cfg.Paths.ProcessedDir, settle, p.logger, func(path string) {
			if err := p.Enqueue(path); err != nil {
				p.logger.Warn("photo queue full, dropping", "file", filepath.Base(path))
			}
		})
		if err := watcher.Start(); err != nil {
			cancel()
			return fmt.Errorf("start watcher: %w", err)
		}
		p.watcher = watcher
	}

	go p.drain(runCtx)
	p.running = true
	return nil
}

// Stop shuts the watcher and drain loop down and waits for the in-flight
// photo, if any, to finish.
func (p *Pipeline) Stop() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if !p.running {
		return
	}
	if p.watcher != nil {
		_ = p.watcher.Close()
		p.watcher = nil
	}
	p.cancel()
	<-p.done
	p.running = false
}

// Enqueue adds a photo path to the processing queue without blocking.
func (p *Pipeline) Enqueue(path string) error {
	select {
	case p.queue <- path:
		return nil
	default:
		return services.Wrap(services.ErrTransient, "pipeline", "enqueue", "queue full", nil)
	}
}

func (p *Pipeline) drain(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-p.queue:
			if _, err := p.Process(ctx, path, TriggerWatcher); err != nil {
				p.logger.Error("photo processing failed",
					"file", filepath.Base(path), "error", err)
			}
		}
	}
}

// Process runs the full import for one photo: barcode attempt, shelf
// identification fallback, auto-commit, archive. Only one photo is
// processed at a time regardless of caller.
func (p *Pipeline) Process(ctx context.Context, path string, trigger Trigger) (Outcome, error) {
	p.processMu.Lock()
	p.processing.Store(true)
	defer func() {
		p.processing.Store(false)
		p.processMu.Unlock()
	}()

	fileName := filepath.Base(path)
	job, err := p.jobs.CreateJob(ctx, fileName, trigger)
	if err != nil {
		return Outcome{}, err
	}
	p.publish(job, 0, 0, 0, "")

	job.Status = JobProcessing
	if err := p.jobs.SetStatus(ctx, job.ID, JobProcessing); err != nil {
		return Outcome{}, err
	}
	p.publish(job, 0, 0, 0, "")
	p.logger.Info("processing photo", "file", fileName, "job", job.ID)

	candidates, err := p.detect(ctx, path)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	if len(candidates) == 0 {
		job.Status = JobNoMoviesFound
		if err := p.jobs.Finish(ctx, job.ID, JobNoMoviesFound, 0, 0, 0, ""); err != nil {
			return Outcome{}, err
		}
		p.publish(job, 0, 0, 0, "")
		if err := p.notifier.NotifyNoMoviesFound(ctx, fileName); err != nil {
			p.logger.Warn("notify failed", "error", err)
		}
		return Outcome{Job: job}, nil
	}

	result, err := p.importer.AutoCommit(candidates, fileName)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	job.Status = JobSuccess
	job.Detected = len(candidates)
	job.Added = len(result.Added)
	job.Skipped = len(result.Skipped)
	if err := p.jobs.Finish(ctx, job.ID, JobSuccess, job.Detected, job.Added, job.Skipped, ""); err != nil {
		return Outcome{}, err
	}
	p.publish(job, job.Detected, job.Added, job.Skipped, "")
	p.logger.Info("photo import complete",
		"file", fileName, "detected", job.Detected, "added", job.Added, "skipped", job.Skipped)
	if err := p.notifier.NotifyImportCompleted(ctx, fileName, job.Added, job.Skipped); err != nil {
		p.logger.Warn("notify failed", "error", err)
	}

	return Outcome{
		Job:      job,
		Detected: candidates,
		Added:    job.Added,
		Skipped:  result.Skipped,
	}, nil
}

// detect tries the barcode path first; a photo without a readable barcode
// falls through to shelf identification. Failed terminal states leave the
// photo in the sources directory for retry.
func (p *Pipeline) detect(ctx context.Context, path string) ([]vision.Candidate, error) {
	if !p.detector.Configured() {
		return nil, services.Wrap(services.ErrNotConfigured, "pipeline", "detect", "vision api key missing", nil)
	}

	if p.barcodes != nil && p.barcodes.Configured() {
		result, err := p.barcodes.Lookup(ctx, path)
		if err == nil && result.Success && result.Movie != nil {
			return []vision.Candidate{*result.Movie}, nil
		}
		if err != nil {
			p.logger.Debug("barcode attempt failed, falling back to shelf identification",
				"file", filepath.Base(path), "error", err)
		}
	}

	return p.detector.IdentifyMovies(ctx, path)
}

func (p *Pipeline) fail(ctx context.Context, job Job, cause error) (Outcome, error) {
	job.Status = JobError
	job.ErrorMessage = cause.Error()
	if err := p.jobs.Finish(ctx, job.ID, JobError, 0, 0, 0, job.ErrorMessage); err != nil {
		p.logger.Error("record job failure", "job", job.ID, "error", err)
	}
	p.publish(job, 0, 0, 0, job.ErrorMessage)
	if err := p.notifier.NotifyImportFailed(ctx, job.FileName, cause); err != nil {
		p.logger.Warn("notify failed", "error", err)
	}
	return Outcome{Job: job}, cause
}

func (p *Pipeline) publish(job Job, detected, added, skipped int, errMsg string) {
	p.hub.Publish(Event{
		JobID:    job.ID,
		FileName: job.FileName,
		Status:   job.Status,
		Detected: detected,
		Added:    added,
		Skipped:  skipped,
		Error:    errMsg,
	})
}

// Status is the live pipeline snapshot served by the API and CLI.
type Status struct {
	Running     bool      `json:"running"`
	Configured  bool      `json:"configured"`
	QueueLength int       `json:"queueLength"`
	Processing  bool      `json:"processing"`
	Counts      JobCounts `json:"counts"`
	RecentJobs  []Job     `json:"recentJobs,omitempty"`
}

// Status reports watcher state, queue depth, and job history.
func (p *Pipeline) Status(ctx context.Context) (Status, error) {
	counts, err := p.jobs.Counts(ctx)
	if err != nil {
		return Status{}, err
	}
	recent, err := p.jobs.RecentJobs(ctx, 10)
	if err != nil {
		return Status{}, err
	}

	p.runMu.Lock()
	running := p.running && p.watcher != nil
	p.runMu.Unlock()
	processing := p.processing.Load()

	return Status{
		Running:     running,
		Configured:  p.detector.Configured(),
		QueueLength: len(p.queue),
		Processing:  processing,
		Counts:      counts,
		RecentJobs:  recent,
	}, nil
}
