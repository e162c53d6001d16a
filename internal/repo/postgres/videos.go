package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/domain/video"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrVideoNotFound = errors.New("video not found")

type VideosRepo struct {
	pool *pgxpool.Pool
}

func NewVideosRepo(pool *pgxpool.Pool) *VideosRepo {
	return &VideosRepo{pool: pool}
}

const videoColumns = `id, user_id, project_id, original_name, file_name, file_path, file_size,
	duration, resolution, format, status, thumbnail, processed_at, created_at, updated_at`

func scanVideo(row pgx.Row) (video.Video, error) {
	var v video.Video

	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.ProjectID,
		&v.OriginalName,
		&v.FileName,
		&v.FilePath,
		&v.FileSize,
		&v.Duration,
		&v.Resolution,
		&v.Format,
		&v.Status,
		&v.Thumbnail,
		&v.ProcessedAt,
		&v.CreatedAt,
		&v.UpdatedAt,
	)

	return v, err
}

func (r *VideosRepo) Create(ctx context.Context, v video.Video) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO videos (id, user_id, project_id, original_name, file_name, file_path,
			file_size, duration, resolution, format, status, thumbnail, processed_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		v.ID, v.UserID, v.ProjectID, v.OriginalName, v.FileName, v.FilePath,
		v.FileSize, v.Duration, v.Resolution, v.Format, v.Status, v.Thumbnail,
		v.ProcessedAt, v.CreatedAt, v.UpdatedAt,
	)

	return err
}

// GetForUser fetches a video only when it belongs to the given user, so
// ownership checks live in one place.
func (r *VideosRepo) GetForUser(ctx context.Context, id, userID string) (video.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1 AND user_id = $2`,
		id, userID,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return video.Video{}, ErrVideoNotFound
		}
		return video.Video{}, err
	}

	return v, nil
}

func (r *VideosRepo) GetByID(ctx context.Context, id string) (video.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`,
		id,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return video.Video{}, ErrVideoNotFound
		}
		return video.Video{}, err
	}

	return v, nil
}

func (r *VideosRepo) ListByUser(ctx context.Context, userID string, limit int) ([]video.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+` FROM videos
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		userID, limit,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]video.Video, 0, limit)

	for rows.Next() {
		v, err := scanVideo(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, rows.Err()
}

func (r *VideosRepo) UpdateStatus(ctx context.Context, id string, status video.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// MarkProcessed completes processing: final status, measured duration,
// processed_at stamp.
func (r *VideosRepo) MarkProcessed(ctx context.Context, id string, durationSecs int, processedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos
		 SET status = $2, duration = $3, processed_at = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, video.StatusCompleted, durationSecs, processedAt,
	)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}
