package model

// ProgressSnapshot is everything the presentation layer needs to render the
// overall and current month progress in one read.
type ProgressSnapshot struct {
	TotalWatchedSeconds int         `json:"totalWatched"`
	TotalWatchedDisplay string      `json:"totalWatchedDisplay"`
	GoalMinutes         int         `json:"goal"`
	GoalDisplay         string      `json:"goalDisplay"`
	PercentComplete     float64     `json:"percentComplete"`
	VideoCount          int         `json:"videoCount"`
	Busy                bool        `json:"busy"`
	CurrentMonth        MonthBucket `json:"currentMonth"`
	CurrentMonthPercent float64     `json:"currentMonthPercent"`
}

// MonthlySeriesPoint is one bar of the monthly charts.
type MonthlySeriesPoint struct {
	Month               string  `json:"month"`
	TotalWatchedSeconds int     `json:"totalWatched"`
	GoalMinutes         int     `json:"goal"`
	Percent             int     `json:"percent"`
	HoursWatched        float64 `json:"hoursWatched"`
}
