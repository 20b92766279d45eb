package pipeline

import "time"

// JobStatus is the lifecycle state of one photo import job.
type JobStatus string

const (
	JobQueued        JobStatus = "queued"
	JobProcessing    JobStatus = "processing"
	JobSuccess       JobStatus = "success"
	JobNoMoviesFound JobStatus = "no_movies_found"
	JobError         JobStatus = "error"
)

// Trigger tags what started a job.
type Trigger string

const (
	TriggerWatcher Trigger = "watcher"
	TriggerManual  Trigger = "manual"
)

// Job is one photo import run persisted in SQLite.
type Job struct {
	ID           int64     `json:"id"`
	FileName     string    `json:"fileName"`
	TriggeredBy  Trigger   `json:"triggeredBy"`
	Status       JobStatus `json:"status"`
	Detected     int       `json:"detected"`
	Added        int       `json:"added"`
	Skipped      int       `json:"skipped"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Terminal reports whether the job has finished, in any outcome.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobSuccess, JobNoMoviesFound, JobError:
		return true
	}
	return false
}
