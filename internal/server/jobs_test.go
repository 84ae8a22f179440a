package server

import (
	"errors"
	"testing"

	"github.com/teemow/recap/internal/pipeline"
)

func TestJobTrackerLifecycle(t *testing.T) {
	tracker := NewJobTracker()

	id := tracker.Create("abc123uuid==")
	if id == "" {
		t.Fatal("Create returned empty job ID")
	}

	job, ok := tracker.Get(id)
	if !ok {
		t.Fatal("Get did not find freshly created job")
	}
	if job.Status != JobStatusQueued {
		t.Errorf("new job status = %q, want %q", job.Status, JobStatusQueued)
	}
	if job.MeetingUUID != "abc123uuid==" {
		t.Errorf("meeting UUID = %q, want %q", job.MeetingUUID, "abc123uuid==")
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if job.StartedAt != nil || job.FinishedAt != nil {
		t.Error("timestamps set before the job ran")
	}

	tracker.Start(id)
	job, _ = tracker.Get(id)
	if job.Status != JobStatusProcessing {
		t.Errorf("started job status = %q, want %q", job.Status, JobStatusProcessing)
	}
	if job.StartedAt == nil {
		t.Error("StartedAt not set after Start")
	}

	result := &pipeline.JobResult{Course: "Physics 101", SessionFolder: "Session_1_Intro_2024-01-15"}
	tracker.Succeed(id, result)
	job, _ = tracker.Get(id)
	if job.Status != JobStatusSucceeded {
		t.Errorf("finished job status = %q, want %q", job.Status, JobStatusSucceeded)
	}
	if job.Result == nil || job.Result.Course != "Physics 101" {
		t.Errorf("job result = %+v, want course %q", job.Result, "Physics 101")
	}
	if job.FinishedAt == nil {
		t.Error("FinishedAt not set after Succeed")
	}
}

func TestJobTrackerFail(t *testing.T) {
	tracker := NewJobTracker()
	id := tracker.Create("abc123uuid==")

	tracker.Start(id)
	tracker.Fail(id, errors.New("no transcript file"))

	job, _ := tracker.Get(id)
	if job.Status != JobStatusFailed {
		t.Errorf("failed job status = %q, want %q", job.Status, JobStatusFailed)
	}
	if job.Error != "no transcript file" {
		t.Errorf("job error = %q, want %q", job.Error, "no transcript file")
	}
}

func TestJobTrackerUnknownID(t *testing.T) {
	tracker := NewJobTracker()

	if _, ok := tracker.Get("nope"); ok {
		t.Error("Get found a job that was never created")
	}

	// Transitions on unknown IDs must not panic.
	tracker.Start("nope")
	tracker.Succeed("nope", nil)
	tracker.Fail("nope", errors.New("x"))

	if tracker.Len() != 0 {
		t.Errorf("tracker length = %d, want 0", tracker.Len())
	}
}

func TestJobTrackerGetReturnsCopy(t *testing.T) {
	tracker := NewJobTracker()
	id := tracker.Create("abc123uuid==")

	job, _ := tracker.Get(id)
	job.Status = "tampered"

	fresh, _ := tracker.Get(id)
	if fresh.Status != JobStatusQueued {
		t.Errorf("tracked job mutated through Get copy: status = %q", fresh.Status)
	}
}
