package notifications

import (
	"context"

	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
)

type NotificationStore interface {
	Create(ctx context.Context, n notification.Notification) error
}

// StoreNotifier writes notifications to the notifications table, which the
// front-end polls.
type StoreNotifier struct {
	store NotificationStore
}

func NewStoreNotifier(store NotificationStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (n *StoreNotifier) Send(ctx context.Context, in SendInput) error {
	return n.store.Create(ctx, notification.New(in.UserID, in.Title, in.Message, in.Type, in.Metadata))
}
