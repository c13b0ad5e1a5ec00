package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/logger"
)

// EnsureResolutionCacheSchema creates the table caching resolved videos if not exists
func EnsureResolutionCacheSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS youtube_video_cache (
        video_id TEXT PRIMARY KEY,
        data JSONB NOT NULL,
        expires_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create youtube_video_cache table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_youtube_video_cache_expires_at ON youtube_video_cache(expires_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_youtube_video_cache_expires_at")
	}
	return nil
}

// ResolutionCacheRepository keeps resolved video metadata in Postgres,
// stored as JSONB. Used when Redis is not around.
type ResolutionCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewResolutionCacheRepository(db *sql.DB) *ResolutionCacheRepository {
	return &ResolutionCacheRepository{db: db, now: time.Now}
}

// GetVideo returns a cached video if present and not expired
func (r *ResolutionCacheRepository) GetVideo(ctx context.Context, videoID string) (*model.ResolvedVideo, error) {
	if r.db == nil {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, `SELECT data, expires_at FROM youtube_video_cache WHERE video_id=$1`, videoID)
	var raw []byte
	var expiresAt time.Time
	if err := row.Scan(&raw, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if r.now().After(expiresAt) {
		return nil, nil
	}
	var v model.ResolvedVideo
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertVideo stores or updates the cache row with TTL from now
func (r *ResolutionCacheRepository) UpsertVideo(ctx context.Context, video *model.ResolvedVideo, ttl time.Duration) error {
	if r.db == nil || video == nil || video.VideoID == "" {
		return nil
	}
	raw, err := json.Marshal(video)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	q := `INSERT INTO youtube_video_cache(video_id, data, expires_at, updated_at)
          VALUES ($1,$2,$3,$4)
          ON CONFLICT (video_id) DO UPDATE SET data=EXCLUDED.data, expires_at=EXCLUDED.expires_at, updated_at=EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q, video.VideoID, raw, now.Add(ttl), now)
	return err
}
