package audit

import (
	"context"
	"log/slog"
)

// SlogRecorder writes audit entries to the structured log. Used in dev and as
// the fallback when no activity store is wired.
type SlogRecorder struct {
	log *slog.Logger
}

func NewSlogRecorder(log *slog.Logger) *SlogRecorder {
	return &SlogRecorder{log: log}
}

func (r *SlogRecorder) Record(ctx context.Context, e Entry) {
	r.log.InfoContext(ctx, "audit",
		"user_id", e.UserID,
		"action", e.Action,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
		"ip", e.IPAddress,
	)
}
