package repository

import (
	"context"
	"time"

	"watch-tracker/domain/model"
)

// IResolutionCache caches resolved video metadata by video ID
type IResolutionCache interface {
	// GetVideo returns the cached metadata, or nil on a miss.
	GetVideo(ctx context.Context, videoID string) (*model.ResolvedVideo, error)
	// UpsertVideo stores the metadata with a TTL from now.
	UpsertVideo(ctx context.Context, video *model.ResolvedVideo, ttl time.Duration) error
}
