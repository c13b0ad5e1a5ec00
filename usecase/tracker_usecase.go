package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/domain/repository"
	"watch-tracker/infrastructure/logger"
	"watch-tracker/infrastructure/utils"
)

// ITrackerUseCase is the read and mutation surface the presentation layer uses.
type ITrackerUseCase interface {
	// Mutations
	AddVideo(ctx context.Context, url string) (*model.VideoRecord, error)
	RemoveVideo(ctx context.Context, id string) (bool, error)
	SetGoal(ctx context.Context, minutes int) error
	SetMonthlyGoal(ctx context.Context, month string, minutes int) (model.MonthBucket, error)
	RecomputeAll(ctx context.Context) ([]model.MonthBucket, error)

	// Reads
	Videos() []model.VideoRecord
	Goal() int
	TotalWatchedSeconds() int
	CurrentMonthProgress() model.MonthBucket
	MonthlyProgress() []model.MonthBucket
	MonthlySeries() []model.MonthlySeriesPoint
	Snapshot() model.ProgressSnapshot
	Busy() bool

	// Subscribe registers a listener called after every completed mutation.
	// The returned func removes it.
	Subscribe(listener ProgressListener) func()
}

// ProgressListener receives the snapshot taken after a mutation.
type ProgressListener func(snapshot model.ProgressSnapshot)

// TrackerOptions tune a TrackerUseCase. Zero values pick the defaults.
type TrackerOptions struct {
	Clock       utils.Clock
	Location    *time.Location
	DefaultGoal int
}

// TrackerUseCase owns the video log, the global goal and the month buckets.
// Every mutation runs mutate, recompute, persist under one lock so cycles
// never overlap. At most one resolution is in flight at a time.
type TrackerUseCase struct {
	mu       sync.RWMutex
	busy     atomic.Bool
	resolver repository.IVideoResolver
	bridge   *PersistenceBridge
	videos   *VideoStore
	goal     *GoalStore
	monthly  *MonthlyAggregator

	listenersMu  sync.Mutex
	listeners    map[int]ProgressListener
	nextListener int
}

func NewTrackerUseCase(resolver repository.IVideoResolver, store repository.IKeyValueStore, opts TrackerOptions) *TrackerUseCase {
	if opts.Clock == nil {
		opts.Clock = utils.GetCurrentTime
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultGoal <= 0 {
		opts.DefaultGoal = DefaultGoalMinutes
	}
	return &TrackerUseCase{
		resolver:  resolver,
		bridge:    NewPersistenceBridge(store, opts.DefaultGoal),
		videos:    NewVideoStore(opts.Clock),
		goal:      NewGoalStore(opts.DefaultGoal),
		monthly:   NewMonthlyAggregator(opts.Clock, opts.Location),
		listeners: make(map[int]ProgressListener),
	}
}

// Hydrate replaces all in-memory state with what the storage medium holds.
// Buckets are loaded as stored and not recomputed.
func (u *TrackerUseCase) Hydrate(ctx context.Context) {
	state := u.bridge.Hydrate(ctx)

	u.mu.Lock()
	u.videos.Replace(state.Videos)
	u.goal.Set(state.GoalMinutes)
	u.monthly.Replace(state.Buckets)
	u.mu.Unlock()

	logger.GetLogger().
		WithField("videos", len(state.Videos)).
		WithField("goal", state.GoalMinutes).
		WithField("months", len(state.Buckets)).
		Info("Tracker state hydrated")
}

// AddVideo validates url, resolves its metadata and records it. Nothing is
// mutated unless resolution succeeds. A *model.PersistError means the video
// was added in memory but could not be saved.
func (u *TrackerUseCase) AddVideo(ctx context.Context, rawURL string) (*model.VideoRecord, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, model.ErrEmptyURL
	}
	if !u.resolver.Recognize(url) {
		return nil, model.ErrInvalidURL
	}
	if !u.busy.CompareAndSwap(false, true) {
		return nil, model.ErrBusy
	}
	u.publish()
	defer func() {
		u.busy.Store(false)
		u.publish()
	}()

	// Resolution runs to completion even if the caller goes away.
	resolved, err := u.resolver.Resolve(context.WithoutCancel(ctx), url)
	if err != nil {
		logger.GetLogger().WithField("url", url).WithField("error", err).Warn("Video resolution failed")
		var resErr *model.ResolutionError
		if errors.As(err, &resErr) {
			return nil, resErr
		}
		return nil, &model.ResolutionError{Message: "failed to fetch video details", Err: err}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	record := u.videos.Add(model.VideoCandidate{
		Title:           resolved.Title,
		URL:             url,
		ThumbnailURL:    resolved.ThumbnailURL,
		DurationSeconds: resolved.DurationSeconds,
	})
	u.monthly.Recompute(u.videos.List(), u.goal.Get())
	err = u.persistAll(ctx)

	logger.GetLogger().WithField("id", record.ID).WithField("duration", record.DurationSeconds).Info("Video added")
	return &record, err
}

// RemoveVideo deletes the record with id. Unknown ids are a no-op and
// report false.
func (u *TrackerUseCase) RemoveVideo(ctx context.Context, id string) (bool, error) {
	u.mu.Lock()
	if _, ok := u.videos.Remove(id); !ok {
		u.mu.Unlock()
		return false, nil
	}
	u.monthly.Recompute(u.videos.List(), u.goal.Get())
	err := u.persistAll(ctx)
	u.mu.Unlock()

	u.publish()
	return true, err
}

// SetGoal replaces the global goal. Existing buckets keep their goal.
func (u *TrackerUseCase) SetGoal(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return model.ErrInvalidGoal
	}
	u.mu.Lock()
	u.goal.Set(minutes)
	u.monthly.Recompute(u.videos.List(), u.goal.Get())
	err := u.persistAll(ctx)
	u.mu.Unlock()

	u.publish()
	return err
}

// SetMonthlyGoal overrides the goal of one month, creating its bucket if needed.
func (u *TrackerUseCase) SetMonthlyGoal(ctx context.Context, month string, minutes int) (model.MonthBucket, error) {
	if minutes <= 0 {
		return model.MonthBucket{}, model.ErrInvalidGoal
	}
	u.mu.Lock()
	bucket, err := u.monthly.SetMonthlyGoal(month, minutes)
	if err != nil {
		u.mu.Unlock()
		return model.MonthBucket{}, err
	}
	err = u.persistAll(ctx)
	u.mu.Unlock()

	u.publish()
	return bucket, err
}

// RecomputeAll re-derives every month total from the current log.
func (u *TrackerUseCase) RecomputeAll(ctx context.Context) ([]model.MonthBucket, error) {
	u.mu.Lock()
	u.monthly.RecomputeAll(u.videos.List(), u.goal.Get())
	buckets := u.monthly.Sorted()
	err := u.persistAll(ctx)
	u.mu.Unlock()

	u.publish()
	return buckets, err
}

// Close writes the full state one last time.
func (u *TrackerUseCase) Close(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.persistAll(ctx)
}

// persistAll writes all three keys, attempting each even if one fails.
// Callers hold u.mu.
func (u *TrackerUseCase) persistAll(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	return errors.Join(
		u.bridge.PersistVideos(ctx, u.videos.List()),
		u.bridge.PersistGoal(ctx, u.goal.Get()),
		u.bridge.PersistMonthly(ctx, u.monthly.ListAll()),
	)
}

func (u *TrackerUseCase) Videos() []model.VideoRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.videos.List()
}

func (u *TrackerUseCase) Goal() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.goal.Get()
}

func (u *TrackerUseCase) TotalWatchedSeconds() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.videos.TotalWatchedSeconds()
}

func (u *TrackerUseCase) CurrentMonthProgress() model.MonthBucket {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.monthly.CurrentMonthProgress(u.goal.Get())
}

// MonthlyProgress returns all buckets in chronological order.
func (u *TrackerUseCase) MonthlyProgress() []model.MonthBucket {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.monthly.Sorted()
}

func (u *TrackerUseCase) MonthlySeries() []model.MonthlySeriesPoint {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.monthly.Series()
}

func (u *TrackerUseCase) Busy() bool {
	return u.busy.Load()
}

func (u *TrackerUseCase) Snapshot() model.ProgressSnapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	total := u.videos.TotalWatchedSeconds()
	goal := u.goal.Get()
	current := u.monthly.CurrentMonthProgress(goal)
	return model.ProgressSnapshot{
		TotalWatchedSeconds: total,
		TotalWatchedDisplay: utils.FormatTimeForDisplay(total),
		GoalMinutes:         goal,
		GoalDisplay:         utils.FormatMinutes(goal),
		PercentComplete:     utils.CalculatePercentComplete(total, goal),
		VideoCount:          u.videos.Len(),
		Busy:                u.busy.Load(),
		CurrentMonth:        current,
		CurrentMonthPercent: utils.CalculatePercentComplete(current.TotalWatchedSeconds, current.GoalMinutes),
	}
}

func (u *TrackerUseCase) Subscribe(listener ProgressListener) func() {
	u.listenersMu.Lock()
	defer u.listenersMu.Unlock()
	id := u.nextListener
	u.nextListener++
	u.listeners[id] = listener
	return func() {
		u.listenersMu.Lock()
		defer u.listenersMu.Unlock()
		delete(u.listeners, id)
	}
}

// publish must be called without u.mu held.
func (u *TrackerUseCase) publish() {
	u.listenersMu.Lock()
	if len(u.listeners) == 0 {
		u.listenersMu.Unlock()
		return
	}
	listeners := make([]ProgressListener, 0, len(u.listeners))
	for _, l := range u.listeners {
		listeners = append(listeners, l)
	}
	u.listenersMu.Unlock()

	snapshot := u.Snapshot()
	for _, l := range listeners {
		l(snapshot)
	}
}
