package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const monthKeyLayout = "2006-01"

// MonthBucket aggregates the watched time of one calendar month.
type MonthBucket struct {
	Month               string `json:"month"`        // format: "YYYY-MM"
	TotalWatchedSeconds int    `json:"totalWatched"` // in seconds
	GoalMinutes         int    `json:"goal"`         // in minutes
}

// MonthKey returns the zero padded "YYYY-MM" key of t, evaluated in loc.
// A nil loc keeps the location already attached to t.
func MonthKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseMonthKey validates a "YYYY-MM" key and returns the first instant of
// that month in loc.
func ParseMonthKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(monthKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", key, err)
	}
	if t.Format(monthKeyLayout) != key {
		return time.Time{}, fmt.Errorf("invalid month %q: not zero padded", key)
	}
	return t, nil
}

// SortMonthBuckets orders buckets chronologically. Lexical order on the
// zero padded key is chronological.
func SortMonthBuckets(buckets []MonthBucket) {
	slices.SortFunc(buckets, func(a, b MonthBucket) int {
		return strings.Compare(a.Month, b.Month)
	})
}
