package notifications

import (
	"context"
	"encoding/json"

	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
)

type SendInput struct {
	UserID   string
	Title    string
	Message  string
	Type     notification.Type
	Metadata json.RawMessage
}

// Notifier delivers an in-app notification to a user. Callers treat delivery
// as best-effort.
type Notifier interface {
	Send(ctx context.Context, input SendInput) error
}
