package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyNotifier struct {
	err   error
	calls int
}

func (f *flakyNotifier) Send(ctx context.Context, in SendInput) error {
	f.calls++
	return f.err
}

func TestProtectedNotifier_OpensAfterThreshold(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("store down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour,
	})

	ctx := context.Background()
	in := SendInput{UserID: "u1", Title: "t", Message: "m"}

	for i := 0; i < 2; i++ {
		if err := n.Send(ctx, in); err == nil {
			t.Fatalf("expected inner error on call %d", i)
		}
	}

	// Circuit is now open: the inner notifier must not be reached.
	before := inner.calls
	if err := n.Send(ctx, in); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != before {
		t.Fatalf("open circuit must not call inner")
	}
}

func TestProtectedNotifier_RecoversAfterCooldown(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("store down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	ctx := context.Background()
	in := SendInput{UserID: "u1", Title: "t", Message: "m"}

	if err := n.Send(ctx, in); err == nil {
		t.Fatalf("expected failure to open circuit")
	}

	time.Sleep(20 * time.Millisecond)
	inner.err = nil

	// Half-open probe succeeds and closes the circuit again.
	if err := n.Send(ctx, in); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := n.Send(ctx, in); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}
