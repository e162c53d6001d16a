package postgres

import (
	"context"
	"errors"

	"github.com/MrHoror07/sevenaiproo/internal/domain/notification"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationsRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationsRepo(pool *pgxpool.Pool) *NotificationsRepo {
	return &NotificationsRepo{pool: pool}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notification.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, message, type, read, metadata, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.Read, n.Metadata, n.CreatedAt,
	)

	return err
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, message, type, read, metadata, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		userID, limit,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]notification.Notification, 0, limit)

	for rows.Next() {
		var n notification.Notification

		err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.Metadata, &n.CreatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	return out, rows.Err()
}

// MarkRead flips read for a notification owned by userID; absent or
// foreign-owned rows report ErrNotificationNotFound.
func (r *NotificationsRepo) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
