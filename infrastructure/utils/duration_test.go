package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYouTubeDuration(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{"hours minutes seconds", "PT1H30M15S", 5415},
		{"seconds only", "PT42S", 42},
		{"minutes only", "PT4M", 240},
		{"hours and seconds", "PT2H5S", 7205},
		{"nothing recognizable", "garbage", 0},
		{"bare prefix", "PT", 0},
		{"empty", "", 0},
		{"day component is not part of the pattern", "P1D", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseYouTubeDuration(tt.token))
		})
	}
}

func TestMatchYouTubeDuration(t *testing.T) {
	seconds, ok := MatchYouTubeDuration("PT4M13S")
	assert.True(t, ok)
	assert.Equal(t, 253, seconds)

	_, ok = MatchYouTubeDuration("4 minutes")
	assert.False(t, ok)

	seconds, ok = MatchYouTubeDuration("P0D")
	assert.False(t, ok)
	assert.Equal(t, 0, seconds)
}
