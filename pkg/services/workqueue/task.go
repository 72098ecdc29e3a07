// Package workqueue runs batches of ingestion jobs with bounded concurrency.
// Provider jobs (completion calls) are throttled separately from local jobs
// so a batch cannot flood the upstream API.
package workqueue

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a job for concurrency control.
type Kind string

const (
	// KindProvider marks jobs that call the completion provider.
	KindProvider Kind = "provider"
	// KindLocal marks jobs that only touch local resources.
	KindLocal Kind = "local"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Job is one unit of work in a batch.
type Job struct {
	ID   uuid.UUID
	Name string
	Kind Kind
	Run  func() error
}

// NewJob creates a job with a fresh id.
func NewJob(name string, kind Kind, run func() error) *Job {
	return &Job{
		ID:   uuid.New(),
		Name: name,
		Kind: kind,
		Run:  run,
	}
}

// jobState tracks one job's progress. All access goes through the mutex.
type jobState struct {
	job *Job

	mu          sync.Mutex
	status      Status
	startedAt   *time.Time
	completedAt *time.Time
	err         error
}

func newJobState(job *Job) *jobState {
	return &jobState{job: job, status: StatusPending}
}

func (s *jobState) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	now := time.Now()
	switch status {
	case StatusRunning:
		s.startedAt = &now
	case StatusCompleted, StatusFailed, StatusCancelled:
		s.completedAt = &now
	}
}

func (s *jobState) getStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *jobState) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Snapshot is an immutable view of one job's state.
type Snapshot struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Kind        Kind       `json:"kind"`
	Status      Status     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func (s *jobState) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errMsg string
	if s.err != nil {
		errMsg = s.err.Error()
	}
	return Snapshot{
		ID:          s.job.ID,
		Name:        s.job.Name,
		Kind:        s.job.Kind,
		Status:      s.status,
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
		Error:       errMsg,
	}
}
