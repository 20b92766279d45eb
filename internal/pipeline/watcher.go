package pipeline

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"discshelf/internal/fileutil"
)

// Watcher reports new images dropped into the sources directory. Each file
// is announced once its writes have settled, so half-copied photos never
// reach the queue.
type Watcher struct {
	dir          string
	processedDir string
	settle       time.Duration
	logger       *slog.Logger
	notify       func(path string)

	fs *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewWatcher constructs a watcher over dir. notify runs on a timer
// goroutine once per settled file.
func NewWatcher(dir, processedDir string, settle time.Duration, logger *slog.Logger, notify func(path string)) *Watcher {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	return &Watcher{
		dir:          dir,
		processedDir: processedDir,
		settle:       settle,
		logger:       logger,
		notify:       notify,
		timers:       make(map[string]*time.Timer),
	}
}

// Start begins watching. It returns once the filesystem watch is
// established; events are handled on a background goroutine.
func (w *Watcher) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fs.Add(w.dir); err != nil {
		_ = fs.Close()
		return err
	}
	w.fs = fs
	w.logger.Info("photo watcher started", "dir", w.dir)

	go w.loop()
	return nil
}

// Close stops watching and cancels pending settle timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	if w.fs != nil {
		return w.fs.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.bump(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("photo watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !fileutil.IsImageFile(event.Name) {
		return false
	}
	if w.processedDir != "" && fileutil.WithinDirectory(event.Name, w.processedDir) {
		return false
	}
	return true
}

// bump restarts the settle timer for a path; the notify callback fires only
// after the file has been quiet for the full settle window.
func (w *Watcher) bump(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		w.logger.Info("new photo detected", "file", filepath.Base(path))
		w.notify(path)
	})
}
