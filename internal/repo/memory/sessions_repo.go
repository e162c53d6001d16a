package memory

import (
	"context"
	"sync"

	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
)

type SessionsRepo struct {
	mu      sync.RWMutex
	byToken map[string]session.Session
}

func NewSessionsRepo() *SessionsRepo {
	return &SessionsRepo{byToken: make(map[string]session.Session)}
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byToken[s.Token] = s

	return nil
}

func (r *SessionsRepo) GetByToken(ctx context.Context, token string) (session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byToken[token]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}

	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[token]; !ok {
		return session.ErrNotFound
	}

	delete(r.byToken, token)

	return nil
}
