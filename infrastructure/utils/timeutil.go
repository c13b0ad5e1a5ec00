package utils

import (
	"fmt"
	"math"
)

// FormatTime formats seconds as "1h 2m 3s", "2m 3s" or "3s".
func FormatTime(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	remainingSeconds := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, remainingSeconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, remainingSeconds)
	default:
		return fmt.Sprintf("%ds", remainingSeconds)
	}
}

// FormatTimeForDisplay formats seconds as "1h 2m" or "2m".
func FormatTimeForDisplay(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatMinutes formats a minute count as "2h 5m" or "45m". Whole hours keep
// the trailing space and drop the minute suffix: 60 -> "1h ".
func FormatMinutes(minutes int) string {
	hours := minutes / 60
	remainingMinutes := minutes % 60

	if hours > 0 {
		suffix := ""
		if remainingMinutes > 0 {
			suffix = fmt.Sprintf("%dm", remainingMinutes)
		}
		return fmt.Sprintf("%dh %s", hours, suffix)
	}
	return fmt.Sprintf("%dm", remainingMinutes)
}

// CalculatePercentComplete returns watchedSeconds as a percentage of a goal
// given in minutes, capped at 100. A non-positive goal counts as complete as
// soon as anything was watched.
func CalculatePercentComplete(watchedSeconds, goalMinutes int) float64 {
	if goalMinutes <= 0 {
		if watchedSeconds > 0 {
			return 100
		}
		return 0
	}
	percentage := float64(watchedSeconds) / float64(goalMinutes*60) * 100
	return math.Min(percentage, 100)
}

// HoursWatched converts seconds to hours rounded to two decimals.
func HoursWatched(seconds int) float64 {
	return math.Round(float64(seconds)/3600*100) / 100
}
