package audit

import (
	"context"
	"log/slog"
)

// EntryStore is the persistence half of the sink, implemented by the postgres
// activity repo.
type EntryStore interface {
	Insert(ctx context.Context, e Entry) error
}

// StoreRecorder persists entries and swallows store failures after logging
// them; the audit channel must never fail a user-facing request.
type StoreRecorder struct {
	store EntryStore
	log   *slog.Logger
}

func NewStoreRecorder(store EntryStore, log *slog.Logger) *StoreRecorder {
	return &StoreRecorder{store: store, log: log}
}

func (r *StoreRecorder) Record(ctx context.Context, e Entry) {
	if err := r.store.Insert(ctx, e); err != nil {
		r.log.ErrorContext(ctx, "audit write failed", "action", e.Action, "user_id", e.UserID, "err", err)
	}
}
