package repository

import "context"

// Keys used by the tracker on the storage medium.
const (
	KeyWatchedVideos   = "watchedVideos"
	KeyTimeGoal        = "timeGoal"
	KeyMonthlyProgress = "monthlyProgress"
)

// IKeyValueStore is the storage medium: a flat string keyed byte store.
type IKeyValueStore interface {
	// Load returns the stored value and whether the key exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}
