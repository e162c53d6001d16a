package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeInfo    Type = "INFO"
	TypeSuccess Type = "SUCCESS"
	TypeWarning Type = "WARNING"
	TypeError   Type = "ERROR"
	TypePayment Type = "PAYMENT"
	TypeSystem  Type = "SYSTEM"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError, TypePayment, TypeSystem:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Type      Type            `json:"type"`
	Read      bool            `json:"read"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func New(userID, title, message string, typ Type, metadata json.RawMessage) Notification {
	if !typ.IsValid() {
		typ = TypeInfo
	}

	return Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Read:      false,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
