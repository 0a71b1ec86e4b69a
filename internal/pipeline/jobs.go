package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/pdfinsight/internal/outline"
	"github.com/dgallion1/pdfinsight/internal/parser"
)

// JobStatus represents the state of a batch outline job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Job tracks outline extraction over a set of uploaded files.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	files   []parser.Source
	results []FileOutline
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalFiles     int      `json:"total_files"`
	FilesProcessed int      `json:"files_processed"`
	Errors         []string `json:"errors"`
}

// FileOutline is the outline of one file in a batch.
type FileOutline struct {
	Filename    string         `json:"filename"`
	ContentHash string         `json:"content_hash"`
	Result      outline.Result `json:"result"`
}

// NewJob returns a queued job over files.
func NewJob(files []parser.Source) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalFiles: len(files)},
		CreatedAt: now,
		UpdatedAt: now,
		files:     files,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a failed file.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.Progress.FilesProcessed++
	j.UpdatedAt = time.Now()
}

// AddResult records a finished file.
func (j *Job) AddResult(r FileOutline) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, r)
	j.Progress.FilesProcessed++
	j.UpdatedAt = time.Now()
}

// Files returns the uploaded files.
func (j *Job) Files() []parser.Source {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// releaseFiles drops the uploaded bytes once the job is done.
func (j *Job) releaseFiles() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string        `json:"job_id"`
	Status    JobStatus     `json:"status"`
	Phase     string        `json:"phase"`
	Progress  Progress      `json:"progress"`
	Results   []FileOutline `json:"results"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	results := append([]FileOutline{}, j.results...)
	return JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalFiles:     j.Progress.TotalFiles,
			FilesProcessed: j.Progress.FilesProcessed,
			Errors:         errs,
		},
		Results:   results,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
