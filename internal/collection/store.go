package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"discshelf/internal/config"
	"discshelf/internal/fileutil"
)

const (
	documentVersion = "1.0"
	backupPrefix    = "movies-"
	backupSuffix    = ".json"
	backupTimeFmt   = "2006-01-02T15-04-05.000Z"
)

// Validation errors surfaced by Create, Update, and BulkCreate.
var (
	ErrNotFound      = errors.New("movie not found")
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title exceeds maximum length")
	ErrNotesTooLong  = errors.New("notes exceed maximum length")
)

// Document is the persisted collection file.
type Document struct {
	Version      string    `json:"version"`
	LastModified time.Time `json:"lastModified"`
	Movies       []Movie   `json:"movies"`
}

// Store manages the collection document, its in-memory cache, and backups.
type Store struct {
	path       string
	backupsDir string
	maxBackups int
	logger     *slog.Logger

	mu    sync.RWMutex
	cache *Document
}

// Open initializes the store and eagerly loads the collection document.
// A malformed document is a fatal error; a missing one synthesizes an empty
// versioned collection.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}

	store := &Store{
		path:       cfg.CollectionPath(),
		backupsDir: cfg.BackupsDir(),
		maxBackups: cfg.Store.MaxBackups,
		logger:     logger,
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, err := store.loadLocked(); err != nil {
		return nil, err
	}
	return store, nil
}

// Path returns the location of the primary collection document.
func (s *Store) Path() string {
	return s.path
}

// Reload drops the cache so the next operation rereads the document.
func (s *Store) Reload() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func (s *Store) loadLocked() (*Document, error) {
	if s.cache != nil {
		return s.cache, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.cache = &Document{
				Version:      documentVersion,
				LastModified: time.Now().UTC(),
			}
			return s.cache, nil
		}
		return nil, fmt.Errorf("read collection: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", s.path, err)
	}
	s.cache = doc
	return doc, nil
}

// saveLocked backs up the current document file, then atomically replaces
// it with the in-memory state. One call per mutation, including bulk ones.
func (s *Store) saveLocked(doc *Document) error {
	if err := s.backupLocked(); err != nil {
		return err
	}

	doc.LastModified = time.Now().UTC()
	s.cache = doc

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

func (s *Store) backupLocked() error {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat collection: %w", err)
	}

	timestamp := time.Now().UTC().Format(backupTimeFmt)
	backupPath := filepath.Join(s.backupsDir, backupPrefix+timestamp+backupSuffix)
	if err := fileutil.CopyFile(s.path, backupPath); err != nil {
		return fmt.Errorf("backup collection: %w", err)
	}

	return s.pruneBackupsLocked()
}

// pruneBackupsLocked deletes all but the newest maxBackups files, relying on
// the sortable timestamp in the backup name.
func (s *Store) pruneBackupsLocked() error {
	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix) {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names[min(len(names), s.maxBackups):] {
		if err := os.Remove(filepath.Join(s.backupsDir, name)); err != nil {
			s.logger.Warn("prune backup failed",
				slog.String("backup", name),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// GetByID returns the movie with the given id, or ErrNotFound.
func (s *Store) GetByID(id string) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return Movie{}, err
	}
	for _, movie := range doc.Movies {
		if movie.ID == id {
			return movie, nil
		}
	}
	return Movie{}, ErrNotFound
}

// Create validates, coerces, and persists a single new record.
func (s *Store) Create(input NewMovie) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return Movie{}, err
	}

	movie, err := buildMovie(input)
	if err != nil {
		return Movie{}, err
	}

	doc.Movies = append(doc.Movies, movie)
	if err := s.saveLocked(doc); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

// BulkCreate persists a batch of records with the same per-record coercion
// as Create but a single backup and a single document write.
func (s *Store) BulkCreate(inputs []NewMovie) ([]Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	created := make([]Movie, 0, len(inputs))
	for _, input := range inputs {
		movie, err := buildMovie(input)
		if err != nil {
			return nil, err
		}
		created = append(created, movie)
	}

	doc.Movies = append(doc.Movies, created...)
	if err := s.saveLocked(doc); err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies the provided partial changes to an existing record.
func (s *Store) Update(id string, changes Changes) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return Movie{}, err
	}

	index := -1
	for i := range doc.Movies {
		if doc.Movies[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return Movie{}, ErrNotFound
	}

	movie := doc.Movies[index]
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return Movie{}, ErrTitleRequired
		}
		if len(title) > MaxTitleLength {
			return Movie{}, ErrTitleTooLong
		}
		movie.Title = title
	}
	if changes.Notes != nil {
		if len(*changes.Notes) > MaxNotesLength {
			return Movie{}, ErrNotesTooLong
		}
		movie.Notes = *changes.Notes
	}
	if changes.Format != nil {
		movie.Format = ParseFormat(*changes.Format)
	}
	if changes.Genre != nil {
		movie.Genre = *changes.Genre
	}
	if changes.ReleaseDate != nil {
		movie.ReleaseDate = coerceReleaseDate(*changes.ReleaseDate)
	}
	if changes.Actors != nil {
		movie.Actors = *changes.Actors
	}
	if changes.WantToUpgrade != nil {
		movie.WantToUpgrade = *changes.WantToUpgrade
	}
	if changes.UpgradeTarget != nil {
		movie.UpgradeTarget = coerceUpgradeTarget(movie.UpgradeTarget, *changes.UpgradeTarget)
	}
	movie.DateModified = time.Now().UTC()

	doc.Movies[index] = movie
	if err := s.saveLocked(doc); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

// Remove deletes the record with the given id. The boolean reports whether
// a record existed; deleting a missing id is not an error.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return false, err
	}

	for i := range doc.Movies {
		if doc.Movies[i].ID == id {
			doc.Movies = append(doc.Movies[:i], doc.Movies[i+1:]...)
			if err := s.saveLocked(doc); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func buildMovie(input NewMovie) (Movie, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Movie{}, ErrTitleRequired
	}
	if len(title) > MaxTitleLength {
		return Movie{}, ErrTitleTooLong
	}
	if len(input.Notes) > MaxNotesLength {
		return Movie{}, ErrNotesTooLong
	}

	source := input.Source
	if source == "" {
		source = SourceManual
	}

	now := time.Now().UTC()
	return Movie{
		ID:            uuid.NewString(),
		Title:         title,
		Format:        ParseFormat(input.Format),
		Notes:         input.Notes,
		Genre:         input.Genre,
		ReleaseDate:   coerceReleaseDate(input.ReleaseDate),
		Actors:        input.Actors,
		WantToUpgrade: input.WantToUpgrade,
		UpgradeTarget: coerceUpgradeTarget("", input.UpgradeTarget),
		DateAdded:     now,
		DateModified:  now,
		Source:        source,
		SourceFile:    fileutil.SanitizeFileName(input.SourceFile),
	}, nil
}
