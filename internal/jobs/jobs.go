package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Job is the unit of asynchronous work persisted in the jobs table and
// claimed by workers.
type Job struct {
	ID          string     `json:"id"`
	Type        JobType    `json:"type"`
	Payload     []byte     `json:"payload"` // raw json
	Status      JobStatus  `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"maxAttempts"`
	RunAt       time.Time  `json:"runAt"`
	LockedAt    *time.Time `json:"lockedAt,omitempty"`
	LockedBy    *string    `json:"lockedBy,omitempty"`
	LastError   *string    `json:"lastError,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateRequest struct {
	Type    JobType
	Payload []byte
	RunAt   time.Time
	UserID  string
}

const defaultMaxAttempts = 5

// New builds a pending job with defaults applied.
func New(req CreateRequest) Job {
	now := time.Now().UTC()

	runAt := req.RunAt
	if runAt.IsZero() {
		runAt = now
	}

	return Job{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Payload:     req.Payload,
		Status:      JobPending,
		Attempts:    0,
		MaxAttempts: defaultMaxAttempts,
		RunAt:       runAt,
		UserID:      req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
