package youtube

import (
	"context"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/domain/repository"
	"watch-tracker/infrastructure/logger"
)

// CachedResolver is a cache-aside decorator around another resolver, keyed by video ID.
type CachedResolver struct {
	resolver repository.IVideoResolver
	cache    repository.IResolutionCache
	ttl      time.Duration
}

func NewCachedResolver(resolver repository.IVideoResolver, cache repository.IResolutionCache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{resolver: resolver, cache: cache, ttl: ttl}
}

func (r *CachedResolver) Recognize(rawURL string) bool {
	return r.resolver.Recognize(rawURL)
}

func (r *CachedResolver) Resolve(ctx context.Context, rawURL string) (*model.ResolvedVideo, error) {
	videoID, ok := ExtractVideoID(rawURL)
	if !ok || r.cache == nil {
		return r.resolver.Resolve(ctx, rawURL)
	}

	if v, err := r.cache.GetVideo(ctx, videoID); err != nil {
		logger.GetLogger().WithField("videoId", videoID).WithField("error", err).Warn("resolution cache read failed")
	} else if v != nil {
		return v, nil
	}

	video, err := r.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if video.VideoID == "" {
		video.VideoID = videoID
	}
	if err := r.cache.UpsertVideo(ctx, video, r.ttl); err != nil {
		logger.GetLogger().WithField("videoId", videoID).WithField("error", err).Warn("resolution cache write failed")
	}
	return video, nil
}
