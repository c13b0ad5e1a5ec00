package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"watch-tracker/domain/model"

	"github.com/redis/go-redis/v9"
)

const resolutionKeyPrefix = "yt:video:"

// ResolutionCache stores resolved video metadata in redis with a TTL.
type ResolutionCache struct {
	client *redis.Client
}

func NewResolutionCache(client *redis.Client) *ResolutionCache {
	return &ResolutionCache{client: client}
}

func (c *ResolutionCache) GetVideo(ctx context.Context, videoID string) (*model.ResolvedVideo, error) {
	raw, err := c.client.Get(ctx, resolutionKeyPrefix+videoID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v model.ResolvedVideo
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *ResolutionCache) UpsertVideo(ctx context.Context, video *model.ResolvedVideo, ttl time.Duration) error {
	if video == nil || video.VideoID == "" {
		return nil
	}
	raw, err := json.Marshal(video)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resolutionKeyPrefix+video.VideoID, string(raw), ttl).Err()
}
