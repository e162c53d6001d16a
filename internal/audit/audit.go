package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions recorded for security-relevant state transitions.
const (
	ActionAccountCreated    = "ACCOUNT_CREATED"
	ActionLogin             = "LOGIN"
	ActionLogout            = "LOGOUT"
	ActionPaymentPending    = "PAYMENT_PENDING"
	ActionPaymentSuccess    = "PAYMENT_SUCCESS"
	ActionPaymentFailed     = "PAYMENT_FAILED"
	ActionPaymentExpired    = "PAYMENT_EXPIRED"
	ActionUploadVideo       = "UPLOAD_VIDEO"
	ActionExportVideo       = "EXPORT_VIDEO"
	ActionSupportRequest    = "SUPPORT_REQUEST"
	ActionUserStatusChanged = "USER_STATUS_CHANGED"
)

// Entry is a durable, append-only record of an action. It is written to a
// one-way sink and never read back by the request path.
type Entry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource,omitempty"`
	ResourceID string          `json:"resourceId,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	UserAgent  string          `json:"userAgent,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// RequestMeta carries the client attribution handlers extract from the
// inbound request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Recorder is the audit sink. Implementations must be best-effort: a failed
// write is logged by the implementation, never surfaced to the caller.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// NewEntry stamps id and timestamp; callers fill in the rest.
func NewEntry(userID, action string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
}
