package importer

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"discshelf/internal/collection"
	"discshelf/internal/config"
	"discshelf/internal/fileutil"
)

// Importer applies import batches to the collection store and archives the
// source photos they came from.
type Importer struct {
	store        *collection.Store
	sourcesDir   string
	processedDir string
	logger       *slog.Logger
}

// New constructs an Importer over the given store.
func New(cfg *config.Config, store *collection.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	return &Importer{
		store:        store,
		sourcesDir:   cfg.Paths.SourcesDir,
		processedDir: cfg.Paths.ProcessedDir,
		logger:       logger,
	}
}

// ArchivePhoto moves a processed source photo into the processed directory.
// A photo that is already gone is not an error, so re-confirming a batch
// stays idempotent.
func (im *Importer) ArchivePhoto(fileName string) error {
	name := fileutil.SanitizeFileName(fileName)
	if name == "" {
		return nil
	}

	src := filepath.Join(im.sourcesDir, name)
	if !fileutil.WithinDirectory(src, im.sourcesDir) {
		im.logger.Warn("refusing photo archive outside sources directory", "file", fileName)
		return nil
	}

	if err := fileutil.EnsureDir(im.processedDir); err != nil {
		return err
	}
	if err := fileutil.MoveFile(src, filepath.Join(im.processedDir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	im.logger.Info("photo archived", "file", name)
	return nil
}
