package auth

import (
	"context"
	"errors"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/cache"
	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
	"github.com/MrHoror07/sevenaiproo/internal/domain/user"
)

// DefaultSessionTTL is the absolute lifetime of an issued session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// resolveCacheTTL bounds how stale a cached resolution can be. Revocation
// deletes the cache entry, so the TTL only covers expiry drift.
const resolveCacheTTL = 5 * time.Second

type SessionStore interface {
	Create(ctx context.Context, s session.Session) error
	GetByToken(ctx context.Context, token string) (session.Session, error)
	Delete(ctx context.Context, token string) error
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Registry owns the persisted token -> user mapping. The store is the
// authoritative source of validity; the signed token alone does not prove
// non-revocation.
type Registry struct {
	store  SessionStore
	users  UserReader
	tokens *TokenManager
	ttl    time.Duration
	cache  *cache.Cache
}

func NewRegistry(store SessionStore, users UserReader, tokens *TokenManager, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &Registry{
		store:  store,
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		cache:  cache.New(resolveCacheTTL),
	}
}

// Create issues a signed token for the user and persists the session keyed by
// it. Claims embed the full identity; the registry re-resolves the user on
// every lookup regardless.
func (r *Registry) Create(ctx context.Context, u user.User) (session.Session, error) {
	token, err := r.tokens.Issue(u.ID, u.Email, u.Role, r.ttl)

	if err != nil {
		return session.Session{}, err
	}

	now := time.Now().UTC()

	s := session.Session{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}

	if err := r.store.Create(ctx, s); err != nil {
		return session.Session{}, err
	}

	return s, nil
}

// Resolve maps a presented token back to its user. The embedded signature is
// re-checked first, so a forged row in the session store is not enough to
// mint trust; then the persisted record decides validity.
func (r *Registry) Resolve(ctx context.Context, token string) (user.User, error) {
	if _, err := r.tokens.Validate(token); err != nil {
		return user.User{}, session.ErrNotFound
	}

	if v, ok := r.cache.Get(token); ok {
		if u, ok := v.(user.User); ok {
			return u, nil
		}
	}

	s, err := r.store.GetByToken(ctx, token)

	if err != nil {
		return user.User{}, err
	}

	if !s.Valid(time.Now().UTC()) {
		return user.User{}, session.ErrNotFound
	}

	u, err := r.users.GetByID(ctx, s.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, session.ErrNotFound
		}
		return user.User{}, err
	}

	r.cache.Set(token, u)

	return u, nil
}

// Revoke deletes the session record. Deleting an absent record returns
// session.ErrNotFound; callers decide whether that matters.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	r.cache.Delete(token)

	return r.store.Delete(ctx, token)
}
