package usecase_test

import (
	"testing"
	"time"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/utils"
	"watch-tracker/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	march = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	feb   = time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC)
)

func record(id string, seconds int, at time.Time) model.VideoRecord {
	return model.VideoRecord{ID: id, Title: id, DurationSeconds: seconds, AddedAt: at}
}

func TestRecomputeCurrentMonth(t *testing.T) {
	records := []model.VideoRecord{
		record("a", 600, march),
		record("b", 1200, march.Add(24*time.Hour)),
		record("old", 900, feb),
	}

	t.Run("new bucket takes the global goal", func(t *testing.T) {
		got := usecase.RecomputeCurrentMonth(records, nil, march, time.UTC, 120)
		assert.Equal(t, []model.MonthBucket{{Month: "2025-03", TotalWatchedSeconds: 1800, GoalMinutes: 120}}, got)
	})

	t.Run("existing bucket keeps its goal", func(t *testing.T) {
		buckets := []model.MonthBucket{{Month: "2025-03", TotalWatchedSeconds: 5, GoalMinutes: 45}}
		got := usecase.RecomputeCurrentMonth(records, buckets, march, time.UTC, 120)
		assert.Equal(t, []model.MonthBucket{{Month: "2025-03", TotalWatchedSeconds: 1800, GoalMinutes: 45}}, got)
		assert.Equal(t, 5, buckets[0].TotalWatchedSeconds, "input must not be modified")
	})

	t.Run("other months are not touched", func(t *testing.T) {
		buckets := []model.MonthBucket{{Month: "2025-02", TotalWatchedSeconds: 42, GoalMinutes: 60}}
		got := usecase.RecomputeCurrentMonth(records, buckets, march, time.UTC, 120)
		require.Len(t, got, 2)
		assert.Equal(t, model.MonthBucket{Month: "2025-02", TotalWatchedSeconds: 42, GoalMinutes: 60}, got[0])
	})

	t.Run("month is evaluated in the configured location", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*60*60)
		lateFeb := time.Date(2025, time.February, 28, 23, 0, 0, 0, time.UTC) // 01:00 on March 1st in loc
		got := usecase.RecomputeCurrentMonth([]model.VideoRecord{record("x", 60, lateFeb)}, nil, march, loc, 120)
		assert.Equal(t, 60, got[0].TotalWatchedSeconds)
	})
}

func TestMonthlyAggregator_RemovalAcrossMonths(t *testing.T) {
	store := usecase.NewVideoStore(nil)
	agg := usecase.NewMonthlyAggregator(utils.FixedClock(march), time.UTC)
	agg.Replace([]model.MonthBucket{{Month: "2025-02", TotalWatchedSeconds: 900, GoalMinutes: 120}})
	store.Replace([]model.VideoRecord{
		record("current", 600, march),
		record("past", 900, feb),
	})
	agg.Recompute(store.List(), 120)

	store.Remove("past")
	agg.Recompute(store.List(), 120)

	buckets := agg.Sorted()
	require.Len(t, buckets, 2)
	assert.Equal(t, 900, buckets[0].TotalWatchedSeconds, "historical bucket is not recomputed")
	assert.Equal(t, 600, buckets[1].TotalWatchedSeconds)

	store.Remove("current")
	agg.Recompute(store.List(), 120)
	assert.Equal(t, 0, agg.CurrentMonthProgress(120).TotalWatchedSeconds)
}

func TestMonthlyAggregator_CurrentMonthProgress(t *testing.T) {
	agg := usecase.NewMonthlyAggregator(utils.FixedClock(march), time.UTC)

	progress := agg.CurrentMonthProgress(90)

	assert.Equal(t, model.MonthBucket{Month: "2025-03", GoalMinutes: 90}, progress)
	assert.Empty(t, agg.ListAll(), "synthesized bucket is not inserted")
}

func TestMonthlyAggregator_SetMonthlyGoal(t *testing.T) {
	agg := usecase.NewMonthlyAggregator(utils.FixedClock(march), time.UTC)
	agg.Recompute([]model.VideoRecord{record("a", 600, march)}, 120)

	bucket, err := agg.SetMonthlyGoal("2025-03", 30)
	require.NoError(t, err)
	assert.Equal(t, model.MonthBucket{Month: "2025-03", TotalWatchedSeconds: 600, GoalMinutes: 30}, bucket)

	bucket, err = agg.SetMonthlyGoal("2024-11", 200)
	require.NoError(t, err)
	assert.Equal(t, model.MonthBucket{Month: "2024-11", GoalMinutes: 200}, bucket)
	assert.Len(t, agg.ListAll(), 2)

	for _, bad := range []string{"2025-3", "2025-13", "March", ""} {
		_, err = agg.SetMonthlyGoal(bad, 10)
		assert.ErrorIs(t, err, model.ErrInvalidMonth, "month=%q", bad)
	}
}

func TestMonthlyAggregator_GoalChangeDoesNotRewriteBuckets(t *testing.T) {
	agg := usecase.NewMonthlyAggregator(utils.FixedClock(march), time.UTC)
	agg.Recompute(nil, 120)

	agg.Recompute(nil, 300)

	assert.Equal(t, 120, agg.CurrentMonthProgress(300).GoalMinutes)
}

func TestMonthlyAggregator_SortedAndSeries(t *testing.T) {
	agg := usecase.NewMonthlyAggregator(utils.FixedClock(march), time.UTC)
	agg.Replace([]model.MonthBucket{
		{Month: "2025-03", TotalWatchedSeconds: 2100, GoalMinutes: 30},
		{Month: "2024-12", TotalWatchedSeconds: 1000, GoalMinutes: 60},
		{Month: "2025-01", TotalWatchedSeconds: 0, GoalMinutes: 120},
	})

	sorted := agg.Sorted()
	assert.Equal(t, []string{"2024-12", "2025-01", "2025-03"}, []string{sorted[0].Month, sorted[1].Month, sorted[2].Month})

	series := agg.Series()
	require.Len(t, series, 3)
	assert.Equal(t, model.MonthlySeriesPoint{Month: "2024-12", TotalWatchedSeconds: 1000, GoalMinutes: 60, Percent: 28, HoursWatched: 0.28}, series[0])
	assert.Equal(t, 0, series[1].Percent)
	assert.Equal(t, 100, series[2].Percent)
	assert.Equal(t, 0.58, series[2].HoursWatched)
}

func TestMonthlyAggregator_RecomputeAll(t *testing.T) {
	agg := usecase.NewMonthlyAggregator(utils.FixedClock(march), time.UTC)
	agg.Replace([]model.MonthBucket{
		{Month: "2025-02", TotalWatchedSeconds: 5000, GoalMinutes: 60},
		{Month: "2024-06", TotalWatchedSeconds: 10, GoalMinutes: 15},
	})
	records := []model.VideoRecord{
		record("a", 600, march),
		record("b", 300, feb),
		record("c", 100, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)),
	}

	agg.RecomputeAll(records, 120)

	assert.Equal(t, []model.MonthBucket{
		{Month: "2024-01", TotalWatchedSeconds: 100, GoalMinutes: 120},
		{Month: "2024-06", TotalWatchedSeconds: 0, GoalMinutes: 15},
		{Month: "2025-02", TotalWatchedSeconds: 300, GoalMinutes: 60},
		{Month: "2025-03", TotalWatchedSeconds: 600, GoalMinutes: 120},
	}, agg.Sorted())
}

func TestMonthKeyIsZeroPadded(t *testing.T) {
	assert.Equal(t, "2025-03", model.MonthKey(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), time.UTC))
}
