package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/recap/internal/pipeline"
)

// Job statuses, reported verbatim on the jobs API.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusSucceeded  = "succeeded"
	JobStatusFailed     = "failed"
)

// Job is the tracked state of one background recording job. Jobs live in
// memory only; a restart forgets them and the recording can simply be
// resubmitted.
type Job struct {
	ID          string              `json:"job_id"`
	MeetingUUID string              `json:"meeting_uuid"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Result      *pipeline.JobResult `json:"result,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
}

// JobTracker tracks background jobs by ID. All methods are safe for
// concurrent use.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

// NewJobTracker creates an empty JobTracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Create registers a new queued job for meetingUUID and returns its ID.
func (t *JobTracker) Create(meetingUUID string) string {
	job := &Job{
		ID:          uuid.NewString(),
		MeetingUUID: meetingUUID,
		Status:      JobStatusQueued,
		CreatedAt:   t.now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[job.ID] = job
	return job.ID
}

// Start marks the job as processing.
func (t *JobTracker) Start(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return
	}
	started := t.now()
	job.Status = JobStatusProcessing
	job.StartedAt = &started
}

// Succeed marks the job as succeeded with its result.
func (t *JobTracker) Succeed(id string, result *pipeline.JobResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return
	}
	finished := t.now()
	job.Status = JobStatusSucceeded
	job.Result = result
	job.FinishedAt = &finished
}

// Fail marks the job as failed with err's message.
func (t *JobTracker) Fail(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return
	}
	finished := t.now()
	job.Status = JobStatusFailed
	if err != nil {
		job.Error = err.Error()
	}
	job.FinishedAt = &finished
}

// Get returns a copy of the job, or false if the ID is unknown.
func (t *JobTracker) Get(id string) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Len reports the number of tracked jobs.
func (t *JobTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}
