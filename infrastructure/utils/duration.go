package utils

import (
	"regexp"
	"strconv"
)

// YouTube reports durations as ISO 8601 tokens such as "PT1H30M15S".
var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseYouTubeDuration converts a duration token into seconds. Tokens without
// a recognizable component yield 0.
func ParseYouTubeDuration(duration string) int {
	seconds, _ := MatchYouTubeDuration(duration)
	return seconds
}

// MatchYouTubeDuration is ParseYouTubeDuration that also reports whether the
// token matched the pattern at all.
func MatchYouTubeDuration(duration string) (int, bool) {
	match := durationPattern.FindStringSubmatch(duration)
	if match == nil {
		return 0, false
	}

	hours := atoiOrZero(match[1])
	minutes := atoiOrZero(match[2])
	seconds := atoiOrZero(match[3])

	return hours*3600 + minutes*60 + seconds, true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
