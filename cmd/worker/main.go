package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/db"
	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
	"github.com/MrHoror07/sevenaiproo/internal/observability"
	"github.com/MrHoror07/sevenaiproo/internal/queue/worker"
	"github.com/MrHoror07/sevenaiproo/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	jobsRepo := postgres.NewJobsRepo(pool, prom)
	videosRepo := postgres.NewVideosRepo(pool)
	paymentsRepo := postgres.NewPaymentsRepo(pool)
	notificationsRepo := postgres.NewNotificationsRepo(pool)

	// breaker keeps a down notifications table from stalling job throughput
	notifier := notifications.NewProtectedNotifier(
		notifications.NewStoreNotifier(notificationsRepo),
		notifications.ProtectedNotifierConfig{},
	)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: 500 * time.Millisecond,
		WorkerID:     workerID,
	}, jobsRepo, prom, log)

	w.Register(jobs.JobVideoProcess, worker.VideoProcessHandler(videosRepo, notifier, log))
	w.Register(jobs.JobVideoExport, worker.VideoExportHandler(videosRepo, notifier, log))
	w.Register(jobs.JobPaymentExpire, worker.PaymentExpireHandler(paymentsRepo, notifier, audit.NewSlogRecorder(log), log))

	log.Info("worker started", "worker_id", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}
