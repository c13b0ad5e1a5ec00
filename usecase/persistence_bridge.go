package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/domain/repository"
	"watch-tracker/infrastructure/logger"
)

// HydratedState is what Hydrate recovered from the storage medium.
type HydratedState struct {
	Videos      []model.VideoRecord
	GoalMinutes int
	Buckets     []model.MonthBucket
}

// PersistenceBridge maps the three tracker collections onto their storage keys.
type PersistenceBridge struct {
	store       repository.IKeyValueStore
	defaultGoal int
}

func NewPersistenceBridge(store repository.IKeyValueStore, defaultGoal int) *PersistenceBridge {
	if defaultGoal <= 0 {
		defaultGoal = DefaultGoalMinutes
	}
	return &PersistenceBridge{store: store, defaultGoal: defaultGoal}
}

// Hydrate reads every key independently. A missing, unreadable or malformed
// value falls back to the default for that key and never fails startup.
func (b *PersistenceBridge) Hydrate(ctx context.Context) HydratedState {
	state := HydratedState{
		Videos:      []model.VideoRecord{},
		GoalMinutes: b.defaultGoal,
		Buckets:     []model.MonthBucket{},
	}

	if raw, ok := b.load(ctx, repository.KeyWatchedVideos); ok {
		var videos []model.VideoRecord
		if err := json.Unmarshal(raw, &videos); err != nil {
			b.warnCorrupt(repository.KeyWatchedVideos, err)
		} else if videos != nil {
			state.Videos = videos
		}
	}

	if raw, ok := b.load(ctx, repository.KeyTimeGoal); ok {
		minutes, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		switch {
		case err != nil:
			b.warnCorrupt(repository.KeyTimeGoal, err)
		case minutes <= 0:
			b.warnCorrupt(repository.KeyTimeGoal, fmt.Errorf("non-positive goal %d", minutes))
		default:
			state.GoalMinutes = minutes
		}
	}

	if raw, ok := b.load(ctx, repository.KeyMonthlyProgress); ok {
		var buckets []model.MonthBucket
		if err := json.Unmarshal(raw, &buckets); err != nil {
			b.warnCorrupt(repository.KeyMonthlyProgress, err)
		} else if buckets != nil {
			state.Buckets = b.validBuckets(buckets)
		}
	}

	return state
}

// validBuckets drops entries whose month is not a zero padded "YYYY-MM" key
// and repeats of a month already seen. The first occurrence wins.
func (b *PersistenceBridge) validBuckets(buckets []model.MonthBucket) []model.MonthBucket {
	seen := make(map[string]struct{}, len(buckets))
	out := make([]model.MonthBucket, 0, len(buckets))
	for _, bucket := range buckets {
		if _, err := model.ParseMonthKey(bucket.Month, time.UTC); err != nil {
			b.warnCorrupt(repository.KeyMonthlyProgress, err)
			continue
		}
		if _, dup := seen[bucket.Month]; dup {
			b.warnCorrupt(repository.KeyMonthlyProgress, fmt.Errorf("duplicate month %q", bucket.Month))
			continue
		}
		seen[bucket.Month] = struct{}{}
		out = append(out, bucket)
	}
	return out
}

func (b *PersistenceBridge) load(ctx context.Context, key string) ([]byte, bool) {
	raw, found, err := b.store.Load(ctx, key)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Failed to read key, using default")
		return nil, false
	}
	return raw, found
}

func (b *PersistenceBridge) warnCorrupt(key string, err error) {
	logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Stored value is malformed, using default")
}

func (b *PersistenceBridge) PersistVideos(ctx context.Context, videos []model.VideoRecord) error {
	if videos == nil {
		videos = []model.VideoRecord{}
	}
	return b.saveJSON(ctx, repository.KeyWatchedVideos, videos)
}

// PersistGoal stores the goal as a bare integer.
func (b *PersistenceBridge) PersistGoal(ctx context.Context, minutes int) error {
	return b.save(ctx, repository.KeyTimeGoal, []byte(strconv.Itoa(minutes)))
}

func (b *PersistenceBridge) PersistMonthly(ctx context.Context, buckets []model.MonthBucket) error {
	if buckets == nil {
		buckets = []model.MonthBucket{}
	}
	return b.saveJSON(ctx, repository.KeyMonthlyProgress, buckets)
}

func (b *PersistenceBridge) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &model.PersistError{Key: key, Err: fmt.Errorf("encode: %w", err)}
	}
	return b.save(ctx, key, raw)
}

func (b *PersistenceBridge) save(ctx context.Context, key string, raw []byte) error {
	if err := b.store.Save(ctx, key, raw); err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Failed to persist key")
		return &model.PersistError{Key: key, Err: err}
	}
	return nil
}
