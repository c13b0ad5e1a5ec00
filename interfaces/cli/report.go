package cli

import (
	"fmt"
	"math"
	"strings"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/utils"

	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth     = 30
	recentVideos = 5
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4A90E2"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 2).
			MarginBottom(1)
)

// Report is everything the status command prints.
type Report struct {
	Snapshot model.ProgressSnapshot
	Series   []model.MonthlySeriesPoint
	Videos   []model.VideoRecord
}

// RenderStatus renders the overall goal, the current month and the most
// recent videos as terminal boxes.
func RenderStatus(r Report) string {
	s := r.Snapshot

	overall := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Overall"),
		fmt.Sprintf("Watched %s of %s goal", s.TotalWatchedDisplay, s.GoalDisplay),
		progressBar(s.PercentComplete, barWidth)+" "+progressStyle.Render(percentLabel(s.PercentComplete)),
		mutedStyle.Render(fmt.Sprintf("%d videos", s.VideoCount)),
	)

	month := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("This month ("+s.CurrentMonth.Month+")"),
		fmt.Sprintf("Watched %s of %s goal",
			utils.FormatTimeForDisplay(s.CurrentMonth.TotalWatchedSeconds),
			utils.FormatMinutes(s.CurrentMonth.GoalMinutes)),
		progressBar(s.CurrentMonthPercent, barWidth)+" "+progressStyle.Render(percentLabel(s.CurrentMonthPercent)),
	)

	sections := []string{
		titleStyle.Render("Watch time tracker"),
		boxStyle.Render(overall),
		boxStyle.Render(month),
	}
	if len(r.Series) > 0 {
		sections = append(sections, boxStyle.Render(renderSeries(r.Series)))
	}
	if len(r.Videos) > 0 {
		sections = append(sections, boxStyle.Render(renderVideos(r.Videos)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderSeries(series []model.MonthlySeriesPoint) string {
	lines := []string{headerStyle.Render("Monthly")}
	for _, p := range series {
		lines = append(lines, fmt.Sprintf("%s %s %3d%% %5.2fh",
			p.Month, progressBar(float64(p.Percent), barWidth/2), p.Percent, p.HoursWatched))
	}
	return strings.Join(lines, "\n")
}

func renderVideos(videos []model.VideoRecord) string {
	lines := []string{headerStyle.Render("Recent videos")}
	for i, v := range videos {
		if i == recentVideos {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("... and %d more", len(videos)-recentVideos)))
			break
		}
		lines = append(lines, fmt.Sprintf("%-8s %s", utils.FormatTime(v.DurationSeconds), v.Title))
	}
	return strings.Join(lines, "\n")
}

func percentLabel(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p)))
}

func progressBar(percentage float64, width int) string {
	p := int(math.Round(percentage))
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	filled := (p * width) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render(bar)
}
