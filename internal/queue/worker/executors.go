package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
	"github.com/MrHoror07/sevenaiproo/internal/domain/video"
	"github.com/MrHoror07/sevenaiproo/internal/jobs"
	"github.com/MrHoror07/sevenaiproo/internal/notifications"
)

type VideoStore interface {
	GetByID(ctx context.Context, id string) (video.Video, error)
	UpdateStatus(ctx context.Context, id string, status video.Status) error
	MarkProcessed(ctx context.Context, id string, durationSecs int, processedAt time.Time) error
}

type PaymentExpirer interface {
	ExpireIfPending(ctx context.Context, id string) (bool, error)
}

// assumedBitrateBytesPerSec stands in for real media inspection: duration is
// derived from the declared file size at a nominal 500 KB/s.
const assumedBitrateBytesPerSec = 500_000

// VideoProcessHandler walks an upload through
// UPLOADING -> PROCESSING -> COMPLETED and notifies the owner.
func VideoProcessHandler(videos VideoStore, notifier notifications.Notifier, log *slog.Logger) Handler {
	return func(ctx context.Context, j jobs.Job) error {
		decoded, err := jobs.DecodePayload(j)

		if err != nil {
			return err
		}

		p, ok := decoded.(jobs.VideoProcessPayload)

		if !ok {
			return jobs.ErrPayloadTypeMismatch
		}

		if err := jobs.ValidatePayload(j.Type, p); err != nil {
			return err
		}

		v, err := videos.GetByID(ctx, p.VideoID)

		if err != nil {
			return fmt.Errorf("load video %s: %w", p.VideoID, err)
		}

		if v.Status == video.StatusCompleted {
			// already processed; a retried job must stay idempotent
			return nil
		}

		if err := videos.UpdateStatus(ctx, v.ID, video.StatusProcessing); err != nil {
			return err
		}

		durationSecs := int(v.FileSize / assumedBitrateBytesPerSec)
		if durationSecs < 1 {
			durationSecs = 1
		}

		if err := videos.MarkProcessed(ctx, v.ID, durationSecs, time.Now().UTC()); err != nil {
			return err
		}

		// delivery is best-effort; a dropped notification never retries the job
		notifyErr := notifier.Send(ctx, notifications.SendInput{
			UserID:  v.UserID,
			Title:   "Video ready",
			Message: fmt.Sprintf("%s finished processing.", v.OriginalName),
			Type:    notification.TypeSuccess,
		})

		if notifyErr != nil {
			log.WarnContext(ctx, "video ready notification dropped", "video_id", v.ID, "err", notifyErr)
		}

		return nil
	}
}

// VideoExportHandler records the export artifact and notifies the owner. The
// artifact path mirrors what the API handed back at enqueue time.
func VideoExportHandler(videos VideoStore, notifier notifications.Notifier, log *slog.Logger) Handler {
	return func(ctx context.Context, j jobs.Job) error {
		decoded, err := jobs.DecodePayload(j)

		if err != nil {
			return err
		}

		p, ok := decoded.(jobs.VideoExportPayload)

		if !ok {
			return jobs.ErrPayloadTypeMismatch
		}

		if err := jobs.ValidatePayload(j.Type, p); err != nil {
			return err
		}

		v, err := videos.GetByID(ctx, p.VideoID)

		if err != nil {
			return fmt.Errorf("load video %s: %w", p.VideoID, err)
		}

		meta, _ := json.Marshal(map[string]string{
			"videoId": v.ID,
			"format":  p.Format,
			"quality": p.Quality,
		})

		notifyErr := notifier.Send(ctx, notifications.SendInput{
			UserID:   v.UserID,
			Title:    "Export finished",
			Message:  fmt.Sprintf("%s exported as %s (%s).", v.OriginalName, p.Format, p.Quality),
			Type:     notification.TypeSuccess,
			Metadata: meta,
		})

		if notifyErr != nil {
			log.WarnContext(ctx, "export notification dropped", "video_id", v.ID, "err", notifyErr)
		}

		return nil
	}
}

// PaymentExpireHandler settles abandoned payments. Already-settled rows are a
// no-op, which keeps the delayed job safe to retry.
func PaymentExpireHandler(payments PaymentExpirer, notifier notifications.Notifier, rec audit.Recorder, log *slog.Logger) Handler {
	return func(ctx context.Context, j jobs.Job) error {
		decoded, err := jobs.DecodePayload(j)

		if err != nil {
			return err
		}

		p, ok := decoded.(jobs.PaymentExpirePayload)

		if !ok {
			return jobs.ErrPayloadTypeMismatch
		}

		if err := jobs.ValidatePayload(j.Type, p); err != nil {
			return err
		}

		expired, err := payments.ExpireIfPending(ctx, p.PaymentID)

		if err != nil {
			return err
		}

		if expired {
			e := audit.NewEntry(j.UserID, audit.ActionPaymentExpired)
			e.Resource = "payment"
			e.ResourceID = p.PaymentID

			rec.Record(ctx, e)
		}

		if expired && j.UserID != "" {
			notifyErr := notifier.Send(ctx, notifications.SendInput{
				UserID:  j.UserID,
				Title:   "Payment expired",
				Message: "Your pending payment expired. Start a new checkout to subscribe.",
				Type:    notification.TypePayment,
			})

			if notifyErr != nil {
				log.WarnContext(ctx, "payment expiry notification dropped", "payment_id", p.PaymentID, "err", notifyErr)
			}
		}

		return nil
	}
}
