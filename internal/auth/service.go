package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
	"github.com/MrHoror07/sevenaiproo/internal/domain/user"
	"github.com/MrHoror07/sevenaiproo/internal/security"
)

var (
	// ErrInvalidCredentials collapses "no such user", "no password set" and
	// "wrong password" into one outcome so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidSession covers missing, expired, revoked and forged tokens.
	ErrInvalidSession = errors.New("invalid session")
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Service is the authentication facade: it composes the password hasher, the
// token manager (via the registry) and the session registry behind the four
// operations handlers call.
type Service struct {
	users    UserStore
	sessions *Registry
	audit    audit.Recorder
	log      *slog.Logger
}

func NewService(users UserStore, sessions *Registry, rec audit.Recorder, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		audit:    rec,
		log:      log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Meta     audit.RequestMeta
}

// Register creates the user and immediately opens a session. Email uniqueness
// is enforced by the store; a constraint violation surfaces as ErrEmailTaken
// with the first registration untouched.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, session.Session, error) {
	hash, err := security.HashPassword(in.Password)

	if err != nil {
		return user.User{}, session.Session{}, err
	}

	u, err := s.users.Create(ctx, in.Email, hash, in.Name, user.RoleUser)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, session.Session{}, ErrEmailTaken
		}
		return user.User{}, session.Session{}, err
	}

	sess, err := s.sessions.Create(ctx, u)

	if err != nil {
		return user.User{}, session.Session{}, err
	}

	s.record(ctx, u.ID, audit.ActionAccountCreated, in.Meta)

	return u, sess, nil
}

type LoginInput struct {
	Email    string
	Password string
	Meta     audit.RequestMeta
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, session.Session, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, session.Session{}, ErrInvalidCredentials
		}
		return user.User{}, session.Session{}, err
	}

	if u.PasswordHash == "" {
		return user.User{}, session.Session{}, ErrInvalidCredentials
	}

	if err := security.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return user.User{}, session.Session{}, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, u)

	if err != nil {
		return user.User{}, session.Session{}, err
	}

	s.record(ctx, u.ID, audit.ActionLogin, in.Meta)

	return u, sess, nil
}

// Logout resolves the owner first for the audit trail (best-effort), then
// revokes. An already-revoked or unknown token is not an error here.
func (s *Service) Logout(ctx context.Context, token string, meta audit.RequestMeta) error {
	if u, err := s.sessions.Resolve(ctx, token); err == nil {
		s.record(ctx, u.ID, audit.ActionLogout, meta)
	}

	err := s.sessions.Revoke(ctx, token)

	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	return nil
}

// Authenticate is the guard every protected operation delegates to.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	u, err := s.sessions.Resolve(ctx, token)

	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return user.User{}, ErrInvalidSession
		}
		return user.User{}, err
	}

	return u, nil
}

func (s *Service) record(ctx context.Context, userID, action string, meta audit.RequestMeta) {
	e := audit.NewEntry(userID, action)
	e.IPAddress = meta.IPAddress
	e.UserAgent = meta.UserAgent

	s.audit.Record(ctx, e)
}
