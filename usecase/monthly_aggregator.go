package usecase

import (
	"maps"
	"math"
	"slices"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/utils"
)

// RecomputeCurrentMonth returns a copy of buckets in which the bucket for the
// month of now holds the summed duration of every record added in that month.
// An existing bucket keeps its goal; a new one takes globalGoal. Other months
// are copied untouched.
func RecomputeCurrentMonth(records []model.VideoRecord, buckets []model.MonthBucket, now time.Time, loc *time.Location, globalGoal int) []model.MonthBucket {
	current := model.MonthKey(now, loc)
	total := 0
	for _, r := range records {
		if model.MonthKey(r.AddedAt, loc) == current {
			total += r.DurationSeconds
		}
	}

	out := slices.Clone(buckets)
	if i := indexOfMonth(out, current); i >= 0 {
		out[i].TotalWatchedSeconds = total
		return out
	}
	return append(out, model.MonthBucket{
		Month:               current,
		TotalWatchedSeconds: total,
		GoalMinutes:         globalGoal,
	})
}

// RecomputeAllMonths re-derives the total of every month that has a bucket or
// a record. Goals are preserved; months first seen here take globalGoal.
func RecomputeAllMonths(records []model.VideoRecord, buckets []model.MonthBucket, loc *time.Location, globalGoal int) []model.MonthBucket {
	totals := make(map[string]int)
	for _, r := range records {
		totals[model.MonthKey(r.AddedAt, loc)] += r.DurationSeconds
	}

	out := slices.Clone(buckets)
	for i := range out {
		out[i].TotalWatchedSeconds = totals[out[i].Month]
		delete(totals, out[i].Month)
	}
	for _, month := range slices.Sorted(maps.Keys(totals)) {
		out = append(out, model.MonthBucket{Month: month, TotalWatchedSeconds: totals[month], GoalMinutes: globalGoal})
	}
	return out
}

func indexOfMonth(buckets []model.MonthBucket, month string) int {
	return slices.IndexFunc(buckets, func(b model.MonthBucket) bool { return b.Month == month })
}

// MonthlyAggregator owns the month buckets. Not safe for concurrent use.
type MonthlyAggregator struct {
	buckets []model.MonthBucket
	clock   utils.Clock
	loc     *time.Location
}

func NewMonthlyAggregator(clock utils.Clock, loc *time.Location) *MonthlyAggregator {
	if clock == nil {
		clock = utils.GetCurrentTime
	}
	if loc == nil {
		loc = time.Local
	}
	return &MonthlyAggregator{buckets: []model.MonthBucket{}, clock: clock, loc: loc}
}

func (a *MonthlyAggregator) CurrentMonth() string {
	return model.MonthKey(a.clock(), a.loc)
}

// Recompute refreshes the current month bucket from records.
func (a *MonthlyAggregator) Recompute(records []model.VideoRecord, globalGoal int) {
	a.buckets = RecomputeCurrentMonth(records, a.buckets, a.clock(), a.loc, globalGoal)
}

// RecomputeAll refreshes every month bucket from records. It is never run
// implicitly.
func (a *MonthlyAggregator) RecomputeAll(records []model.VideoRecord, globalGoal int) {
	a.buckets = RecomputeAllMonths(records, a.buckets, a.loc, globalGoal)
}

// CurrentMonthProgress returns the current month bucket, or an unsaved zero
// bucket carrying globalGoal when none exists yet.
func (a *MonthlyAggregator) CurrentMonthProgress(globalGoal int) model.MonthBucket {
	current := a.CurrentMonth()
	if i := indexOfMonth(a.buckets, current); i >= 0 {
		return a.buckets[i]
	}
	return model.MonthBucket{Month: current, GoalMinutes: globalGoal}
}

// SetMonthlyGoal sets the goal of month, creating an empty bucket when the
// month has none. The month key must be canonical "YYYY-MM".
func (a *MonthlyAggregator) SetMonthlyGoal(month string, minutes int) (model.MonthBucket, error) {
	if _, err := model.ParseMonthKey(month, a.loc); err != nil {
		return model.MonthBucket{}, model.ErrInvalidMonth
	}
	if i := indexOfMonth(a.buckets, month); i >= 0 {
		a.buckets[i].GoalMinutes = minutes
		return a.buckets[i], nil
	}
	bucket := model.MonthBucket{Month: month, GoalMinutes: minutes}
	a.buckets = append(a.buckets, bucket)
	return bucket, nil
}

// ListAll returns every bucket in storage order.
func (a *MonthlyAggregator) ListAll() []model.MonthBucket {
	return slices.Clone(a.buckets)
}

// Sorted returns every bucket in chronological order.
func (a *MonthlyAggregator) Sorted() []model.MonthBucket {
	out := a.ListAll()
	model.SortMonthBuckets(out)
	return out
}

// Series turns the sorted buckets into chart points.
func (a *MonthlyAggregator) Series() []model.MonthlySeriesPoint {
	sorted := a.Sorted()
	points := make([]model.MonthlySeriesPoint, 0, len(sorted))
	for _, b := range sorted {
		points = append(points, model.MonthlySeriesPoint{
			Month:               b.Month,
			TotalWatchedSeconds: b.TotalWatchedSeconds,
			GoalMinutes:         b.GoalMinutes,
			Percent:             int(math.Round(utils.CalculatePercentComplete(b.TotalWatchedSeconds, b.GoalMinutes))),
			HoursWatched:        utils.HoursWatched(b.TotalWatchedSeconds),
		})
	}
	return points
}

// Replace swaps all buckets, used when hydrating.
func (a *MonthlyAggregator) Replace(buckets []model.MonthBucket) {
	if buckets == nil {
		buckets = []model.MonthBucket{}
	}
	a.buckets = slices.Clone(buckets)
}
