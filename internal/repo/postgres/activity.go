package postgres

import (
	"context"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepo is the persistence half of the audit sink (audit.EntryStore).
type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Insert(ctx context.Context, e audit.Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_logs (id, user_id, action, resource, resource_id, metadata, ip_address, user_agent, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.UserID, e.Action, nullable(e.Resource), nullable(e.ResourceID),
		e.Metadata, nullable(e.IPAddress), nullable(e.UserAgent), e.CreatedAt,
	)

	return err
}

// ListRecent feeds the admin activity view.
func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, COALESCE(resource,''), COALESCE(resource_id,''),
			metadata, COALESCE(ip_address,''), COALESCE(user_agent,''), created_at
		 FROM activity_logs
		 ORDER BY created_at DESC, id
		 LIMIT $1`,
		limit,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]audit.Entry, 0, limit)

	for rows.Next() {
		var e audit.Entry

		err = rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
			&e.Metadata, &e.IPAddress, &e.UserAgent, &e.CreatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

// nullable maps "" to NULL so optional attribution columns stay NULL-clean.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
