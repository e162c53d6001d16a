package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (jobs.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
}

// Handler executes one claimed job. A returned error triggers retry with
// backoff until attempts run out.
type Handler func(ctx context.Context, j jobs.Job) error

type Config struct {
	PollInterval time.Duration
	WorkerID     string
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	handlers map[jobs.JobType]Handler
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, repo JobsRepository, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		handlers: make(map[jobs.JobType]Handler),
		prom:     prom,
		log:      log,
	}
}

// Register wires a handler for a job type. Unregistered types fail their jobs
// immediately rather than spinning through retries.
func (w *Worker) Register(t jobs.JobType, h Handler) {
	w.handlers[t] = h
}

// Run polls for runnable jobs until the context is cancelled. After a
// successful claim it drains eagerly, so a burst of jobs is not throttled by
// the poll interval.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal", "worker_id", w.cfg.WorkerID)
			return nil

		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("job processing error", "err", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}
