package postgres

import (
	"context"
	"errors"

	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionsRepo persists the token -> user mapping. The primary key on token
// doubles as the uniqueness guarantee the registry relies on.
type SessionsRepo struct {
	pool *pgxpool.Pool
}

func NewSessionsRepo(pool *pgxpool.Pool) *SessionsRepo {
	return &SessionsRepo{pool: pool}
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at)
         VALUES ($1,$2,$3,$4)`,
		s.Token, s.UserID, s.ExpiresAt, s.CreatedAt,
	)

	return err
}

func (r *SessionsRepo) GetByToken(ctx context.Context, token string) (session.Session, error) {
	var s session.Session

	err := r.pool.QueryRow(ctx,
		`SELECT token, user_id, expires_at, created_at
         FROM sessions
         WHERE token = $1`,
		token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}

	return nil
}
