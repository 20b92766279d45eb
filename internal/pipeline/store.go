package pipeline

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"discshelf/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the job table layout changes. Old databases
// are safe to delete; job history is advisory.
const schemaVersion = 1

// ErrSchemaMismatch indicates the job database was created by a different
// version and needs to be removed.
var ErrSchemaMismatch = errors.New("job database schema mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// JobStore persists import job history in SQLite.
type JobStore struct {
	db   *sql.DB
	path string
}

// OpenJobStore initializes or connects to the job history database.
func OpenJobStore(cfg *config.Config) (*JobStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JobDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &JobStore{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *JobStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *JobStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *JobStore) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

const timeFormat = time.RFC3339Nano

// CreateJob records a new queued job and returns it with its assigned id.
func (s *JobStore) CreateJob(ctx context.Context, fileName string, trigger Trigger) (Job, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO import_jobs (file_name, triggered_by, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fileName, string(trigger), string(JobQueued), now.Format(timeFormat), now.Format(timeFormat))
	if err != nil {
		return Job{}, fmt.Errorf("create job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Job{}, fmt.Errorf("job id: %w", err)
	}
	return Job{
		ID:          id,
		FileName:    fileName,
		TriggeredBy: trigger,
		Status:      JobQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus moves a job to a new non-terminal state.
func (s *JobStore) SetStatus(ctx context.Context, id int64, status JobStatus) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE import_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	return nil
}

// Finish records a terminal state along with the run's counters.
func (s *JobStore) Finish(ctx context.Context, id int64, status JobStatus, detected, added, skipped int, errorMessage string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE import_jobs
		 SET status = ?, detected = ?, added = ?, skipped = ?, error_message = ?, updated_at = ?
		 WHERE id = ?`,
		string(status), detected, added, skipped, errorMessage,
		time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// RecentJobs returns the newest jobs first, up to limit.
func (s *JobStore) RecentJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, triggered_by, status, detected, added, skipped, error_message, created_at, updated_at
		 FROM import_jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			job                  Job
			trigger, status      string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&job.ID, &job.FileName, &trigger, &status,
			&job.Detected, &job.Added, &job.Skipped, &job.ErrorMessage,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.TriggeredBy = Trigger(trigger)
		job.Status = JobStatus(status)
		job.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		job.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// JobCounts aggregates job totals per terminal outcome.
type JobCounts struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
}

// Counts summarizes job history for status reporting.
func (s *JobStore) Counts(ctx context.Context) (JobCounts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM import_jobs GROUP BY status`)
	if err != nil {
		return JobCounts{}, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	var counts JobCounts
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return JobCounts{}, fmt.Errorf("scan count: %w", err)
		}
		counts.Total += n
		switch JobStatus(status) {
		case JobSuccess:
			counts.Succeeded += n
		case JobNoMoviesFound:
			counts.Empty += n
		case JobError:
			counts.Failed += n
		}
	}
	return counts, rows.Err()
}
