package youtube

import (
	"context"

	"watch-tracker/domain/model"
)

// DisabledResolver stands in when no YouTube credentials are configured.
// Links are still recognized so validation errors stay accurate.
type DisabledResolver struct{}

func (DisabledResolver) Recognize(rawURL string) bool {
	return IsYouTubeURL(rawURL)
}

func (DisabledResolver) Resolve(context.Context, string) (*model.ResolvedVideo, error) {
	return nil, &model.ResolutionError{Message: "YouTube API is not configured, set YOUTUBE_API_KEY"}
}
