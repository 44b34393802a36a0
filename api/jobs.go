package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a scraping job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks one scraping run from submission to completion. Timestamps are
// RFC3339; StartedAt and CompletedAt are empty until the corresponding
// transition happens.
type Job struct {
	ID           string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	CreatedAt    string    `json:"created_at"`
	StartedAt    string    `json:"started_at,omitempty"`
	CompletedAt  string    `json:"completed_at,omitempty"`
	Sites        []string  `json:"sites"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ResultFile   string    `json:"result_file,omitempty"`
}

// JobStore holds jobs for the lifetime of the server process.
type JobStore interface {
	Create(sites []string) *Job
	Get(id string) (*Job, bool)
	Update(id string, fn func(*Job))
	Delete(id string) bool
	List() []*Job
}

// MemoryJobStore is a mutex-guarded in-memory JobStore. Jobs do not survive
// a restart.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryJobStore creates an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: map[string]*Job{}}
}

// Create registers a new queued job for the given sites.
func (s *MemoryJobStore) Create(sites []string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		CreatedAt: time.Now().Format(time.RFC3339),
		Sites:     append([]string(nil), sites...),
	}
	s.jobs[job.ID] = job
	return job
}

// Get returns a snapshot of the job by id.
func (s *MemoryJobStore) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Update applies fn to the stored job under the lock.
func (s *MemoryJobStore) Update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// Delete removes a job, reporting whether it existed.
func (s *MemoryJobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}

// List returns snapshots of all jobs in no particular order.
func (s *MemoryJobStore) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	return jobs
}
