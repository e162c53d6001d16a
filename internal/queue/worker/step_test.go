package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/queue/worker"
)

type fakeJobsRepo struct {
	claimFn func(ctx context.Context, workerID string) (jobs.Job, error)

	done        []string
	failed      map[string]string
	rescheduled map[string]time.Time
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{
		failed:      make(map[string]string),
		rescheduled: make(map[string]time.Time),
	}
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (jobs.Job, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}
	return jobs.Job{}, jobs.ErrJobNotFound
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failed[id] = errMsg
	return nil
}

func (f *fakeJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled[id] = runAt
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func claimedJob(t *testing.T, attempts int) jobs.Job {
	t.Helper()

	payload, err := json.Marshal(jobs.VideoProcessPayload{VideoID: "v1", UserID: "u1"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	return jobs.Job{
		ID:          "j1",
		Type:        jobs.JobVideoProcess,
		Payload:     payload,
		Status:      jobs.JobProcessing,
		Attempts:    attempts,
		MaxAttempts: 5,
	}
}

func TestProcessOneSuccess(t *testing.T) {
	repo := newFakeJobsRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (jobs.Job, error) {
		return claimedJob(t, 1), nil
	}

	w := worker.New(worker.Config{WorkerID: "w1"}, repo, nil, discardLogger())

	var handled string
	w.Register(jobs.JobVideoProcess, func(ctx context.Context, j jobs.Job) error {
		handled = j.ID
		return nil
	})

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !processed {
		t.Fatal("expected a job to be processed")
	}
	if handled != "j1" {
		t.Fatalf("handler saw %q, want j1", handled)
	}
	if len(repo.done) != 1 || repo.done[0] != "j1" {
		t.Fatalf("done = %v, want [j1]", repo.done)
	}
}

func TestProcessOneEmptyQueue(t *testing.T) {
	w := worker.New(worker.Config{WorkerID: "w1"}, newFakeJobsRepo(), nil, discardLogger())

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if processed {
		t.Fatal("empty queue should report nothing processed")
	}
}

func TestProcessOneRetriesWithBackoff(t *testing.T) {
	repo := newFakeJobsRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (jobs.Job, error) {
		return claimedJob(t, 2), nil
	}

	w := worker.New(worker.Config{WorkerID: "w1"}, repo, nil, discardLogger())
	w.Register(jobs.JobVideoProcess, func(ctx context.Context, j jobs.Job) error {
		return errors.New("transient db hiccup")
	})

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	runAt, ok := repo.rescheduled["j1"]
	if !ok {
		t.Fatalf("job not rescheduled; failed=%v done=%v", repo.failed, repo.done)
	}

	// attempt 2 backs off at least 8s
	if delay := time.Until(runAt); delay < 7*time.Second {
		t.Fatalf("backoff too short for attempt 2: %v", delay)
	}
}

func TestProcessOneDeadLettersAfterMaxAttempts(t *testing.T) {
	repo := newFakeJobsRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (jobs.Job, error) {
		return claimedJob(t, 5), nil
	}

	w := worker.New(worker.Config{WorkerID: "w1"}, repo, nil, discardLogger())
	w.Register(jobs.JobVideoProcess, func(ctx context.Context, j jobs.Job) error {
		return errors.New("still broken")
	})

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	if _, ok := repo.failed["j1"]; !ok {
		t.Fatalf("job should be dead-lettered; rescheduled=%v", repo.rescheduled)
	}
	if len(repo.rescheduled) != 0 {
		t.Fatal("dead-lettered job must not also be rescheduled")
	}
}

func TestProcessOneUnknownTypeFailsImmediately(t *testing.T) {
	repo := newFakeJobsRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (jobs.Job, error) {
		j := claimedJob(t, 0)
		j.Type = jobs.JobType("video.transmogrify")
		return j, nil
	}

	w := worker.New(worker.Config{WorkerID: "w1"}, repo, nil, discardLogger())

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	if _, ok := repo.failed["j1"]; !ok {
		t.Fatal("unregistered job type should fail without retries")
	}
	if len(repo.rescheduled) != 0 {
		t.Fatal("unregistered job type must not be rescheduled")
	}
}

func TestExponentialBackoffCap(t *testing.T) {
	if d := worker.ExponentialBackoff(0); d < 2*time.Second || d > 3*time.Second {
		t.Fatalf("attempt 0 backoff = %v, want ~2s", d)
	}

	if d := worker.ExponentialBackoff(20); d > 5*time.Minute+time.Second {
		t.Fatalf("backoff should cap at 5m, got %v", d)
	}
}
