package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/auth"
	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
	"github.com/MrHoror07/sevenaiproo/internal/repo/memory"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Record(ctx context.Context, e audit.Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestService(t *testing.T, ttl time.Duration) (*auth.Service, *memory.UsersRepo, *recordingAudit) {
	t.Helper()

	users := memory.NewUsersRepo()
	sessions := memory.NewSessionsRepo()
	tokens := auth.NewTokenManager("test-secret")
	registry := auth.NewRegistry(sessions, users, tokens, ttl)
	rec := &recordingAudit{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return auth.NewService(users, registry, rec, log), users, rec
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	svc, _, rec := newTestService(t, time.Hour)
	ctx := context.Background()

	u, sess, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "a@example.com",
		Password: "secret123",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected a session token on register")
	}

	got, err := svc.Authenticate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated as %s, want %s", got.ID, u.ID)
	}

	if err := svc.Logout(ctx, sess.Token, audit.RequestMeta{}); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	if _, err := svc.Authenticate(ctx, sess.Token); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}

	// Logging out again must stay quiet.
	if err := svc.Logout(ctx, sess.Token, audit.RequestMeta{}); err != nil {
		t.Fatalf("second Logout error: %v", err)
	}

	actions := rec.actions()
	if len(actions) < 2 || actions[0] != audit.ActionAccountCreated {
		t.Fatalf("unexpected audit trail: %v", actions)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	first, _, err := svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, _, err = svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Password: "other-pass"})
	if !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// First registration must still work.
	_, sess, err := svc.Login(ctx, auth.LoginInput{Email: "a@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login after duplicate register: %v", err)
	}

	got, err := svc.Authenticate(ctx, sess.Token)
	if err != nil || got.ID != first.ID {
		t.Fatalf("expected first user back, got %v / %v", got.ID, err)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, _, wrongPass := svc.Login(ctx, auth.LoginInput{Email: "a@example.com", Password: "nope"})
	_, _, noUser := svc.Login(ctx, auth.LoginInput{Email: "ghost@example.com", Password: "nope"})

	if !errors.Is(wrongPass, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", wrongPass)
	}
	if !errors.Is(noUser, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("failure modes must be indistinguishable: %q vs %q", wrongPass, noUser)
	}
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	svc, _, _ := newTestService(t, time.Millisecond)
	ctx := context.Background()

	_, sess, err := svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := svc.Authenticate(ctx, sess.Token); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired session, got %v", err)
	}
}

func TestAuthenticate_ForgedRowIsRejected(t *testing.T) {
	// A session row keyed by a token signed with a different secret must not
	// resolve: resolution re-checks the signature before trusting the store.
	users := memory.NewUsersRepo()
	sessions := memory.NewSessionsRepo()
	registry := auth.NewRegistry(sessions, users, auth.NewTokenManager("real-secret"), time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(users, registry, &recordingAudit{}, log)

	ctx := context.Background()

	u, err := users.Create(ctx, "a@example.com", "x", "Alice", "USER")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	forged, err := auth.NewTokenManager("attacker-secret").Issue(u.ID, u.Email, u.Role, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_ = sessions.Create(ctx, session.Session{
		Token:     forged,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	})

	if _, err := svc.Authenticate(ctx, forged); !errors.Is(err, auth.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for forged token, got %v", err)
	}
}
