package jobs

import (
	"testing"
	"time"
)

func TestEncodeDecode_VideoProcess(t *testing.T) {
	payload := VideoProcessPayload{
		VideoID: "video-123",
		UserID:  "user-456",
	}

	b, err := EncodePayload(JobVideoProcess, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j := New(CreateRequest{Type: JobVideoProcess, Payload: b, RunAt: time.Time{}})

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(VideoProcessPayload)
	if !ok {
		t.Fatalf("expected VideoProcessPayload, got %T", decoded)
	}

	if p.VideoID != payload.VideoID {
		t.Fatalf("expected videoId %s, got %s", payload.VideoID, p.VideoID)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobVideoProcess, PaymentExpirePayload{PaymentID: "p1"})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if err != ErrPayloadTypeMismatch {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestValidatePayload_RequiredIDs(t *testing.T) {
	if err := ValidatePayload(JobVideoProcess, VideoProcessPayload{VideoID: ""}); err == nil {
		t.Fatalf("expected error for empty video id")
	}

	if err := ValidatePayload(JobPaymentExpire, PaymentExpirePayload{PaymentID: " "}); err == nil {
		t.Fatalf("expected error for blank payment id")
	}
}

func TestNew_Defaults(t *testing.T) {
	j := New(CreateRequest{Type: JobVideoExport, Payload: []byte(`{}`)})

	if j.Status != JobPending {
		t.Fatalf("new jobs start pending, got %s", j.Status)
	}
	if j.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("got max attempts %d", j.MaxAttempts)
	}
	if j.RunAt.IsZero() {
		t.Fatalf("run_at must default to now")
	}
}
