package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/jobs"
)

// ProcessOne claims and executes at most one job. The bool reports whether a
// job was claimed at all.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(ctx, j)
	elapsed := time.Since(start)

	if err != nil {
		w.handleFailure(ctx, j, err, elapsed)
		return true, nil
	}

	w.observeResult(j, "done", elapsed)

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	h, ok := w.handlers[j.Type]

	if !ok {
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, j.Type)
	}

	return h(ctx, j)
}

func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, execErr error, elapsed time.Duration) {
	// No handler or undecodable payload will not improve with retries.
	permanent := errors.Is(execErr, jobs.ErrInvalidJobType) ||
		errors.Is(execErr, jobs.ErrInvalidJobPayload) ||
		errors.Is(execErr, jobs.ErrPayloadTypeMismatch)

	if permanent || j.Attempts >= j.MaxAttempts {
		w.observeResult(j, "failed", elapsed)
		w.log.Error("job dead-lettered",
			"job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "err", execErr)

		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed error", "job_id", j.ID, "err", err)
		}
		return
	}

	w.observeResult(j, "retry", elapsed)

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule error", "job_id", j.ID, "err", err)
	}
}

func (w *Worker) observeResult(j jobs.Job, result string, elapsed time.Duration) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(string(j.Type), result).Inc()
	w.prom.JobDuration.WithLabelValues(string(j.Type), result).Observe(elapsed.Seconds())
}
