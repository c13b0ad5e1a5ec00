package repository

import (
	"context"

	"watch-tracker/domain/model"
)

// IVideoResolver looks up title, thumbnail and duration for a video URL.
// Implementations return *model.ResolutionError on failure.
type IVideoResolver interface {
	// Recognize is the syntactic gate run before any lookup.
	Recognize(url string) bool
	Resolve(ctx context.Context, url string) (*model.ResolvedVideo, error)
}
